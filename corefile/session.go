package corefile

import (
	"github.com/gomacho/machocore/machofile"
	"github.com/gomacho/machocore/rangemap"
)

// state is the Session lifecycle: Candidate -> Loaded -> Alive. Destroy is a
// no-op from Alive (the process is already dead); see Process.Destroy.
type state int

const (
	stateCandidate state = iota
	stateLoaded
	stateAlive
)

// Session owns everything derived from one core file: the mapped object
// file, the two range indices, the discovery state, and the thread list. It
// is created by Detect and populated by Load; between construction and Load
// only Path is valid. The core file is mapped and its object file parsed by
// Load, so ObjectFile returns nil until then.
type Session struct {
	path string

	mapped *machofile.MappedFile
	obj    *machofile.File

	segments    *rangemap.RangeMap[SegmentEntry]
	permissions *rangemap.RangeMap[PermissionEntry]

	discovery DiscoveryState
	threads   []ThreadID

	config       Config
	kernel       LoaderPlugin
	resolvedArch string

	state state
}

// Architecture returns the architecture name Loader resolved from the
// core's object file, e.g. "x86_64" or "i386". Empty before Load.
func (s *Session) Architecture() string {
	return s.resolvedArch
}

func newCandidateSession(path string) *Session {
	return &Session{
		path:      path,
		discovery: newDiscoveryState(),
		state:     stateCandidate,
	}
}

// Path returns the core file's filesystem path.
func (s *Session) Path() string {
	return s.path
}

// SetConfig installs the process-wide knobs this backend reads. It may be
// called before or after Load.
func (s *Session) SetConfig(c Config) {
	s.config = c
}

// SetKernelPlugin installs the darwin-kernel loader plugin's refinement
// callback. If never called, kernel addresses found by the discovery sweep
// are used as-is.
func (s *Session) SetKernelPlugin(p LoaderPlugin) {
	s.kernel = p
}

// ObjectFile returns the parsed core object file, or nil before Load.
func (s *Session) ObjectFile() *machofile.File {
	return s.obj
}

// Discovery returns the current image-discovery state.
func (s *Session) Discovery() DiscoveryState {
	return s.discovery
}

// Threads returns the synthesized thread-handle list.
func (s *Session) Threads() []ThreadID {
	return s.threads
}

// Load opens and maps the core file, attaches the parsed object file, and
// runs CoreLoader against it. It is the only place discovery happens; once
// it returns successfully the session is Alive and reads are supported.
func (s *Session) Load() error {
	mapped, err := machofile.OpenMapped(s.path)
	if err != nil {
		return err
	}
	obj, err := machofile.Open(mapped.Data())
	if err != nil {
		mapped.Close()
		if err == machofile.ErrNoData {
			return ErrInvalidCoreObjectFile
		}
		return ErrInvalidCoreModule
	}
	s.mapped = mapped
	s.obj = obj

	if err := (&Loader{Session: s}).Load(); err != nil {
		return err
	}

	s.refreshThreads()
	s.state = stateAlive
	return nil
}

// refreshThreads allocates 0..N-1 fresh thread handles on first call; on
// subsequent calls it copies the existing handles verbatim. Core sessions
// never regain new threads, so in practice this only ever runs once, but
// the rule is kept general because Process.RefreshThreadList is meant to be
// called on every stop-event, not just at Load time.
func (s *Session) refreshThreads() bool {
	if s.threads == nil {
		n := s.obj.NumThreadContexts()
		threads := make([]ThreadID, n)
		for i := range threads {
			threads[i] = ThreadID(i)
		}
		s.threads = threads
	} else {
		s.threads = append([]ThreadID{}, s.threads...)
	}
	return len(s.threads) > 0
}

// Close releases the mapped core file. Destroy on Process never calls this
// (see Process.Destroy's no-op contract); it exists for callers that manage
// Session lifetime directly, e.g. tests and the CLI.
func (s *Session) Close() error {
	if s.mapped == nil {
		return nil
	}
	return s.mapped.Close()
}
