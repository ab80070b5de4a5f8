// Package corefile implements the Mach-O core-file process backend: it
// makes a post-mortem Mach-O core image look like a stopped process for
// inspection purposes.
package corefile

import "github.com/gomacho/machocore/machofile"

// InvalidAddr is the sentinel for "unknown address", matching the host
// debugger's own all-ones convention.
const InvalidAddr uint64 = ^uint64(0)

// ThreadID identifies one synthesized thread, 0..NumThreadContexts-1.
type ThreadID uint32

// VMRange is a virtual-memory range [Base, Base+Size).
type VMRange struct {
	Base, Size uint64
}

func (r VMRange) end() uint64 { return r.Base + r.Size }

// FileRange is a byte range [Offset, Offset+Size) inside the core file.
type FileRange struct {
	Offset, Size uint64
}

func (r FileRange) end() uint64 { return r.Offset + r.Size }

// SegmentEntry maps one VM range onto one file range. Two entries kept in a
// SegmentIndex always have disjoint VM ranges.
type SegmentEntry struct {
	VM   VMRange
	File FileRange
}

// Bounds implements rangemap.Ranged.
func (e SegmentEntry) Bounds() (base, end uint64) { return e.VM.Base, e.VM.end() }

// extend grows e in place to cover an adjacent, file-contiguous range. Only
// valid when the caller has already verified VM and file adjacency.
func (e *SegmentEntry) extend(vmSize, fileSize uint64) {
	e.VM.Size += vmSize
	e.File.Size += fileSize
}

// Permissions is a type alias for machofile.Permissions, so values pass
// between the two packages without conversion; it is the same type, not a
// distinct one.
type Permissions = machofile.Permissions

// PermissionEntry is one unmerged permission record, one per original
// section, sorted by VM base but never coalesced.
type PermissionEntry struct {
	VM   VMRange
	Perm Permissions
}

// Bounds implements rangemap.Ranged.
func (e PermissionEntry) Bounds() (base, end uint64) { return e.VM.Base, e.VM.end() }

// DiscoveryState records what the image-discovery sweep found.
type DiscoveryState struct {
	DyldAddr         uint64
	KernelAddr       uint64
	LoaderPluginName string
}

func newDiscoveryState() DiscoveryState {
	return DiscoveryState{DyldAddr: InvalidAddr, KernelAddr: InvalidAddr}
}

// CorefilePreference selects which image-info address wins when both a
// dyld and a kernel image are found.
type CorefilePreference int

const (
	PreferUser CorefilePreference = iota // default: dyld, fallback kernel
	PreferKernel
)

// Config is the small set of process-wide knobs this backend reads, mirrors
// the host debugger's global settings object.
type Config struct {
	// CorefilePreference selects dyld vs. kernel when both are present.
	CorefilePreference CorefilePreference
	// Verbose enables extra diagnostic output from the CLI/shell; it has no
	// effect on parsing or discovery.
	Verbose bool
}
