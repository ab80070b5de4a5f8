package corefile

import "github.com/gomacho/machocore/machofile"

// Prober sweeps a session's mapped memory looking for the Mach-O headers of
// either a user-space dynamic linker or a Mach kernel, classifying each hit
// it finds. It records only the first hit for each slot: callers may invoke
// Probe repeatedly and the recorded address is never demoted by a later
// hit.
type Prober struct {
	Session *Session
}

// Probe reads a mach_header-sized block at addr and, if it parses as a
// Mach-O header, classifies it:
//
//   - MH_DYLINKER sets dyld_addr.
//   - MH_EXECUTE with MH_DYLDLINK clear sets kernel_addr. Executables that
//     are dynamically linked are not the loader; the loader is the
//     separately-mapped dyld.
//   - anything else, including a dynamically-linked MH_EXECUTE, is ignored.
//
// A short read (fewer than sizeof(mach_header) bytes available) or an
// unrecognized magic is silently ignored; this is a best-effort sweep, not
// a validation pass.
func (p *Prober) Probe(addr uint64) {
	reader := &Reader{Session: p.Session}
	buf := make([]byte, machofile.HeaderSize64)
	n, _ := reader.Read(addr, buf)
	if n < machofile.HeaderSize32 {
		return
	}
	hdr, err := machofile.ParseHeader(buf[:n])
	if err != nil {
		return
	}

	d := &p.Session.discovery
	switch {
	case hdr.FileType == machofile.TypeDylinker:
		if d.DyldAddr == InvalidAddr {
			d.DyldAddr = addr
		}
	case hdr.FileType == machofile.TypeExecute && hdr.Flags&machofile.FlagDyldLink == 0:
		if d.KernelAddr == InvalidAddr {
			d.KernelAddr = addr
		}
	}
}
