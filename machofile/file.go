package machofile

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Permissions mirrors a segment's initprot bits.
type Permissions struct {
	Readable, Writable, Executable bool
}

// Section is one top-level LC_SEGMENT{,_64} load command: a contiguous VM
// range backed by a contiguous file range. Core files map each loaded
// segment with exactly one such command, so "section" here means the same
// thing the surrounding spec means by it.
type Section struct {
	VMAddr, VMSize     uint64
	FileOffset, FileSize uint64
	Perm               Permissions
}

// Architecture describes the single slice a core file was captured from.
type Architecture struct {
	CPUType    int32
	CPUSubtype int32
	Bits       int
}

// ThreadContext is one LC_THREAD/LC_UNIXTHREAD load command's raw
// flavor/count/state payload, undecoded. Turning this into a CPU-specific
// register set is a consumer's job, not this package's.
type ThreadContext struct {
	Cmd  uint32
	Data []byte
}

// File is the parsed view of a Mach-O core image: everything the rest of
// this backend needs and nothing it doesn't (no symbol table, no DWARF — out
// of scope per the surrounding spec).
type File struct {
	data []byte

	header         Header
	sections       []Section
	threadContexts []ThreadContext
}

var (
	// ErrNoData is returned when a File has no backing bytes at all —
	// realizes "InvalidCoreObjectFile" one layer down from corefile.
	ErrNoData = errors.New("object file has no backing data")
)

// Open parses a Mach-O image already resident in memory (typically an
// mmap'd core file; see OpenMapped in this package). It does not copy data.
func Open(data []byte) (*File, error) {
	if len(data) == 0 {
		return nil, ErrNoData
	}
	hdr, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	f := &File{data: data, header: hdr}
	if err := f.parseLoadCommands(); err != nil {
		return nil, err
	}
	return f, nil
}

// Header returns the parsed, byte-order-normalized mach_header.
func (f *File) Header() Header {
	return f.header
}

// FileType reports MH_CORE, MH_EXECUTE, etc.
func (f *File) FileType() uint32 {
	return f.header.FileType
}

// Sections returns the segment list in load-command order (not sorted).
func (f *File) Sections() []Section {
	return f.sections
}

// NumThreadContexts reports the number of LC_THREAD/LC_UNIXTHREAD load
// commands found.
func (f *File) NumThreadContexts() uint32 {
	return uint32(len(f.threadContexts))
}

// ThreadContexts returns the raw flavor/count/state payload of every
// LC_THREAD/LC_UNIXTHREAD load command, in load-command order. Decoding the
// state bytes into CPU registers is out of scope here; this is as far as an
// object-file parser needs to go to let a caller count and locate threads.
func (f *File) ThreadContexts() []ThreadContext {
	return f.threadContexts
}

// Architecture reports the CPU type/subtype and bitness of the captured
// slice. Core files are always single-arch.
func (f *File) Architecture() Architecture {
	return Architecture{
		CPUType:    f.header.CPUType,
		CPUSubtype: f.header.CPUSubtype,
		Bits:       f.header.Bits,
	}
}

// Copy copies up to len(dst) bytes starting at file offset off into dst,
// returning the number of bytes actually copied. It never errors: a
// request that runs past EOF is simply truncated, matching the
// "bytes_copied" contract the sparse reader relies on.
func (f *File) Copy(off uint64, dst []byte) int {
	if off >= uint64(len(f.data)) {
		return 0
	}
	n := copy(dst, f.data[off:])
	return n
}

func (f *File) parseLoadCommands() error {
	size := HeaderSize32
	if f.header.Bits == 64 {
		size = HeaderSize64
	}
	pos := size
	order := f.header.Order
	for i := uint32(0); i < f.header.NCmds; i++ {
		if pos+8 > len(f.data) {
			break
		}
		cmd := order.Uint32(f.data[pos:])
		cmdsize := order.Uint32(f.data[pos+4:])
		if cmdsize < 8 || pos+int(cmdsize) > len(f.data) {
			break
		}
		body := f.data[pos : pos+int(cmdsize)]
		switch cmd {
		case lcSegment:
			if s, ok := parseSegment32(body, order); ok {
				f.sections = append(f.sections, s)
			}
		case lcSegment64:
			if s, ok := parseSegment64(body, order); ok {
				f.sections = append(f.sections, s)
			}
		case lcThread, lcUnixThread:
			f.threadContexts = append(f.threadContexts, ThreadContext{
				Cmd:  cmd,
				Data: append([]byte{}, body[8:]...),
			})
		}
		pos += int(cmdsize)
	}
	return nil
}

// segment_command: cmd,cmdsize,segname[16],vmaddr,vmsize,fileoff,filesize
// (uint32 each), maxprot,initprot (int32 each), nsects,flags (uint32 each).
func parseSegment32(body []byte, order binary.ByteOrder) (Section, bool) {
	const fixedSize = 4 + 4 + 16 + 4 + 4 + 4 + 4 + 4 + 4 + 4 + 4
	if len(body) < fixedSize {
		return Section{}, false
	}
	off := 8 + 16 // skip cmd,cmdsize,segname
	vmaddr := uint64(order.Uint32(body[off:]))
	vmsize := uint64(order.Uint32(body[off+4:]))
	fileoff := uint64(order.Uint32(body[off+8:]))
	filesize := uint64(order.Uint32(body[off+12:]))
	initprot := int32(order.Uint32(body[off+20:]))
	return Section{
		VMAddr:     vmaddr,
		VMSize:     vmsize,
		FileOffset: fileoff,
		FileSize:   filesize,
		Perm:       permFromInitProt(initprot),
	}, true
}

// segment_command_64: same shape, vmaddr/vmsize/fileoff/filesize are uint64.
func parseSegment64(body []byte, order binary.ByteOrder) (Section, bool) {
	const fixedSize = 4 + 4 + 16 + 8 + 8 + 8 + 8 + 4 + 4 + 4 + 4
	if len(body) < fixedSize {
		return Section{}, false
	}
	off := 8 + 16
	vmaddr := order.Uint64(body[off:])
	vmsize := order.Uint64(body[off+8:])
	fileoff := order.Uint64(body[off+16:])
	filesize := order.Uint64(body[off+24:])
	initprot := int32(order.Uint32(body[off+36:]))
	return Section{
		VMAddr:     vmaddr,
		VMSize:     vmsize,
		FileOffset: fileoff,
		FileSize:   filesize,
		Perm:       permFromInitProt(initprot),
	}, true
}

func permFromInitProt(initprot int32) Permissions {
	p := Permissions{
		Readable:   initprot&vmProtRead != 0,
		Writable:   initprot&vmProtWrite != 0,
		Executable: initprot&vmProtExecute != 0,
	}
	// The loader treats an all-zero permission field as the producer having
	// failed to record it, not as "no access"; see corefile.Loader.
	return p
}
