package corefile

// Process is the ProcessFacade: the state machine a debugger actually talks
// to. It wraps a Session and adds the operations a "live-looking" process
// needs beyond what loading the core requires.
type Process struct {
	session *Session
}

// NewProcess wraps session in a Process. session must already be Loaded
// (i.e. Session.Load has returned successfully) for IsAlive to report true.
func NewProcess(session *Session) *Process {
	return &Process{session: session}
}

// Session returns the underlying Session.
func (p *Process) Session() *Session {
	return p.session
}

// IsAlive reports true once the session has been loaded. A core-file
// process is never truly running, but it "looks" alive for inspection
// purposes from the moment its indices and thread list exist.
func (p *Process) IsAlive() bool {
	return p.session.state == stateAlive
}

// WarnBeforeDetach is always false: there is nothing live to warn about
// losing.
func (p *Process) WarnBeforeDetach() bool {
	return false
}

// Destroy is a no-op: the process is already dead. It returns success
// unconditionally; a caller relying on it to signal teardown receives no
// such signal.
func (p *Process) Destroy() error {
	return nil
}

// RefreshThreadList re-synthesizes (or, after the first call, simply
// re-copies) the thread-handle list and reports whether it is non-empty.
func (p *Process) RefreshThreadList() bool {
	return p.session.refreshThreads()
}

// Threads returns the current thread-handle list.
func (p *Process) Threads() []ThreadID {
	return p.session.threads
}

// ImageInfoAddress returns the preferred image's address per the
// corefile_preference policy. It is InvalidAddr only if neither a dyld nor
// a kernel image was ever found.
func (p *Process) ImageInfoAddress() uint64 {
	d := p.session.discovery
	if p.session.config.CorefilePreference == PreferKernel {
		if d.KernelAddr != InvalidAddr {
			return d.KernelAddr
		}
		return d.DyldAddr
	}
	if d.DyldAddr != InvalidAddr {
		return d.DyldAddr
	}
	return d.KernelAddr
}

// LoaderPluginName returns the dynamic-loader plugin name selected during
// Load, or "" if neither image was found.
func (p *Process) LoaderPluginName() string {
	return p.session.discovery.LoaderPluginName
}

// Read overrides any upstream caching: the core file itself is the cache,
// so Read delegates straight to Reader.
func (p *Process) Read(addr uint64, dst []byte) (int, error) {
	return (&Reader{Session: p.session}).Read(addr, dst)
}

// GetRegionInfo delegates to Session.
func (p *Process) GetRegionInfo(addr uint64) (RegionInfo, error) {
	return p.session.GetRegionInfo(addr)
}

// PluginIdentity returns the name/description/version triple a host's
// "plugin list" command would print.
func (p *Process) PluginIdentity() (name, description string, version int) {
	return PluginName, PluginDescription, PluginVersion
}
