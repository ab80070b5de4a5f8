package corefile

import (
	"github.com/gomacho/machocore/machofile"
	"github.com/gomacho/machocore/rangemap"
)

// pageStride is the step the discovery sweep takes across each segment. The
// sweep never checks alignment of the underlying segments against this
// stride; a Mach-O header straddling a non-0x1000 boundary would be missed.
// Kept deliberately: real dyld/kernel images are page-aligned in practice.
const pageStride = 0x1000

// Loader consumes a Session's object file and builds its two range indices,
// then runs image discovery. Named as a verb here because
// corefile.Session.Load is the entry point callers actually use.
type Loader struct {
	Session *Session
}

// Load builds the segment and permission indices from the session's object
// file, then drives image discovery and the architecture overwrite.
func (l *Loader) Load() error {
	s := l.Session
	obj := s.obj
	if obj == nil {
		return ErrInvalidCoreModule
	}
	if obj.NumThreadContexts() == 0 {
		return ErrNoThreadContexts
	}
	sections := obj.Sections()
	if len(sections) == 0 {
		return ErrNoSections
	}

	segments := rangemap.New[SegmentEntry]()
	permissions := rangemap.New[PermissionEntry]()

	// sorted tracks whether sections have arrived in non-decreasing vmaddr
	// order so far. This compares against the *previous section's start*,
	// not its end, so a strictly-increasing but overlapping-in-VM input
	// escapes detection. Kept deliberately rather than "fixed".
	sorted := true
	var prevVMAddr uint64
	first := true

	for _, sec := range sections {
		if sec.VMSize == 0 && sec.FileSize == 0 {
			continue
		}
		if !first && sec.VMAddr < prevVMAddr {
			sorted = false
		}
		prevVMAddr = sec.VMAddr
		first = false

		entry := SegmentEntry{
			VM:   VMRange{Base: sec.VMAddr, Size: sec.VMSize},
			File: FileRange{Offset: sec.FileOffset, Size: sec.FileSize},
		}
		appendOrCoalesce(segments, entry, sorted)

		perm := sec.Perm
		if !perm.Readable && !perm.Writable && !perm.Executable {
			// The permission-fallback rule: some producers fail to record
			// protections, and a debugger must not refuse to disassemble
			// because of it.
			perm = machofile.Permissions{Readable: true, Executable: true}
		}
		permissions.Append(PermissionEntry{
			VM:   VMRange{Base: sec.VMAddr, Size: sec.VMSize},
			Perm: perm,
		})
	}

	if !sorted {
		segments.Sort()
		permissions.Sort()
	}

	s.segments = segments
	s.permissions = permissions

	l.discoverImages()
	l.refineKernelAddr()
	l.selectImage()
	l.overwriteArchitecture()

	return nil
}

// appendOrCoalesce implements the coalescing contract: when sections have
// arrived in VM-sorted order so far, a new entry that is both VM-adjacent
// and file-adjacent to the current back entry extends it in place instead
// of appending. Once sorted is false the caller defers coalescing entirely
// and sorts afterward.
func appendOrCoalesce(segments *rangemap.RangeMap[SegmentEntry], entry SegmentEntry, sorted bool) {
	if sorted {
		if back, ok := segments.Back(); ok {
			vmAdjacent := back.VM.Base+back.VM.Size == entry.VM.Base
			fileAdjacent := back.File.Offset+back.File.Size == entry.File.Offset
			if vmAdjacent && fileAdjacent {
				back.extend(entry.VM.Size, entry.File.Size)
				segments.SetBack(back)
				return
			}
		}
	}
	segments.Append(entry)
}

// discoverImages runs the 0x1000-stride sweep over every segment, in
// sorted VM order, unless both dyld_addr and kernel_addr are already known
// when it starts. Once started it sweeps every segment: it keeps going
// after a hit because both images may exist in the same core.
func (l *Loader) discoverImages() {
	s := l.Session
	if s.discovery.DyldAddr != InvalidAddr && s.discovery.KernelAddr != InvalidAddr {
		return
	}
	prober := &Prober{Session: s}
	for i := 0; i < s.segments.Len(); i++ {
		seg := s.segments.At(i)
		for addr := seg.VM.Base; addr < seg.VM.end(); addr += pageStride {
			prober.Probe(addr)
		}
	}
}

// refineKernelAddr consults the darwin-kernel plugin's search callback, if
// one was set, when a kernel address was found by the sweep. It swaps both
// discovered addresses to InvalidAddr before the call so the callback does
// its own search rather than trusting the 4K-stride result, then restores
// the originals and overwrites kernel_addr only if the callback succeeded.
// Exhaustive 4K-stride scanning can false-hit on non-primary kernel images
// present elsewhere in the dump; the plugin's own search is assumed to be
// more precise.
func (l *Loader) refineKernelAddr() {
	s := l.Session
	if s.discovery.KernelAddr == InvalidAddr || s.kernel.SearchKernel == nil {
		return
	}
	savedKernel, savedDyld := s.discovery.KernelAddr, s.discovery.DyldAddr
	s.discovery.KernelAddr, s.discovery.DyldAddr = InvalidAddr, InvalidAddr

	found := s.kernel.SearchKernel(s)

	s.discovery.KernelAddr, s.discovery.DyldAddr = savedKernel, savedDyld
	if found != InvalidAddr {
		s.discovery.KernelAddr = found
	}
}

// selectImage applies the corefile_preference policy to choose which
// address Process.ImageInfoAddress will return, and records the matching
// loader plugin name.
func (l *Loader) selectImage() {
	s := l.Session
	d := &s.discovery
	preferKernel := s.config.CorefilePreference == PreferKernel

	var first, second uint64
	var firstName, secondName string
	if preferKernel {
		first, firstName = d.KernelAddr, LoaderPluginDarwinKernel
		second, secondName = d.DyldAddr, LoaderPluginDyld
	} else {
		first, firstName = d.DyldAddr, LoaderPluginDyld
		second, secondName = d.KernelAddr, LoaderPluginDarwinKernel
	}

	if first != InvalidAddr {
		d.LoaderPluginName = firstName
	} else if second != InvalidAddr {
		d.LoaderPluginName = secondName
	} else {
		d.LoaderPluginName = ""
	}
}

// overwriteArchitecture always overwrites the session's architecture with
// the one named by the core's object file — core files are always
// single-arch. CPU_TYPE_X86 (7) with CPU_SUBTYPE_486 (4) is special-cased to
// the plain "i386" architecture name rather than "i486". The result is a
// bare architecture name; no target triple or platform component is kept.
func (l *Loader) overwriteArchitecture() {
	arch := l.Session.obj.Architecture()
	l.Session.resolvedArch = resolveArchName(arch)
}

const (
	cpuTypeX86      = 7
	cpuSubtypeX86486 = 4
)

func resolveArchName(arch machofile.Architecture) string {
	if arch.CPUType == cpuTypeX86 && arch.CPUSubtype == cpuSubtypeX86486 {
		return "i386"
	}
	if name, ok := cpuTypeNames[arch.CPUType]; ok {
		return name
	}
	return "unknown"
}

var cpuTypeNames = map[int32]string{
	7:           "x86",
	0x01000007:  "x86_64",
	12:          "arm",
	0x0100000c:  "arm64",
	18:          "ppc",
	0x01000012:  "ppc64",
}
