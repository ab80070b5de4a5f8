package machofile

import (
	"encoding/binary"
	"testing"
)

// buildCore assembles a minimal little-endian MH_CORE image with the given
// 64-bit segments and a thread count, enough to exercise ParseHeader and
// parseLoadCommands without a real core file fixture.
func buildCore(t *testing.T, segs []Section, threads int) []byte {
	t.Helper()
	order := binary.LittleEndian

	var cmds []byte
	for _, s := range segs {
		cmd := make([]byte, 72)
		order.PutUint32(cmd[0:], lcSegment64)
		order.PutUint32(cmd[4:], 72)
		// segname left zeroed
		order.PutUint64(cmd[24:], s.VMAddr)
		order.PutUint64(cmd[32:], s.VMSize)
		order.PutUint64(cmd[40:], s.FileOffset)
		order.PutUint64(cmd[48:], s.FileSize)
		initprot := int32(0)
		if s.Perm.Readable {
			initprot |= vmProtRead
		}
		if s.Perm.Writable {
			initprot |= vmProtWrite
		}
		if s.Perm.Executable {
			initprot |= vmProtExecute
		}
		order.PutUint32(cmd[56:], uint32(initprot)) // maxprot (unused)
		order.PutUint32(cmd[60:], uint32(initprot)) // initprot
		cmds = append(cmds, cmd...)
	}
	for i := 0; i < threads; i++ {
		cmd := make([]byte, 16)
		order.PutUint32(cmd[0:], lcUnixThread)
		order.PutUint32(cmd[4:], 16)
		cmds = append(cmds, cmd...)
	}

	header := make([]byte, HeaderSize64)
	order.PutUint32(header[0:], MagicMachO64)
	order.PutUint32(header[4:], 7) // CPU_TYPE_X86
	order.PutUint32(header[8:], 3)
	order.PutUint32(header[12:], TypeCore)
	order.PutUint32(header[16:], uint32(len(segs)+threads))
	order.PutUint32(header[20:], uint32(len(cmds)))
	order.PutUint32(header[24:], 0)

	out := append([]byte{}, header...)
	out = append(out, cmds...)
	// pad with some trailing "file content" so FileOffset/FileSize in test
	// segments can point somewhere real.
	out = append(out, make([]byte, 0x2000)...)
	return out
}

func TestOpenAndSections(t *testing.T) {
	segs := []Section{
		{VMAddr: 0x1000, VMSize: 0x1000, FileOffset: 0x100, FileSize: 0x1000, Perm: Permissions{Readable: true, Executable: true}},
		{VMAddr: 0x2000, VMSize: 0x1000, FileOffset: 0x1100, FileSize: 0x1000, Perm: Permissions{Readable: true, Writable: true}},
	}
	data := buildCore(t, segs, 1)
	f, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if f.FileType() != TypeCore {
		t.Fatalf("expected MH_CORE filetype, got 0x%x", f.FileType())
	}
	if f.NumThreadContexts() != 1 {
		t.Fatalf("expected 1 thread context, got %d", f.NumThreadContexts())
	}
	got := f.Sections()
	if len(got) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(got))
	}
	if got[0].VMAddr != 0x1000 || !got[0].Perm.Readable || !got[0].Perm.Executable {
		t.Fatalf("unexpected first section: %+v", got[0])
	}
	if got[1].VMAddr != 0x2000 || !got[1].Perm.Writable {
		t.Fatalf("unexpected second section: %+v", got[1])
	}
}

func TestOpenNoData(t *testing.T) {
	if _, err := Open(nil); err != ErrNoData {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestOpenBadMagic(t *testing.T) {
	if _, err := Open([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27}); err == nil {
		t.Fatalf("expected an error for unrecognized magic")
	}
}

func TestCopy(t *testing.T) {
	data := buildCore(t, nil, 0)
	copy(data[0x100:], []byte("hello"))
	f, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	dst := make([]byte, 5)
	n := f.Copy(0x100, dst)
	if n != 5 || string(dst) != "hello" {
		t.Fatalf("Copy returned %d %q", n, dst)
	}
	// Short copy at EOF.
	dst = make([]byte, 64)
	n = f.Copy(uint64(len(data)-3), dst)
	if n != 3 {
		t.Fatalf("expected short copy of 3 bytes at EOF, got %d", n)
	}
	// Fully past EOF.
	n = f.Copy(uint64(len(data)+10), dst)
	if n != 0 {
		t.Fatalf("expected 0 bytes past EOF, got %d", n)
	}
}

func TestSwappedHeader(t *testing.T) {
	// A big-endian-produced header: MH_MAGIC_64 written big-endian reads
	// back as MH_CIGAM_64 under a little-endian probe.
	header := make([]byte, HeaderSize64)
	binary.BigEndian.PutUint32(header[0:], MagicMachO64)
	binary.BigEndian.PutUint32(header[4:], 7)
	binary.BigEndian.PutUint32(header[8:], 0)
	binary.BigEndian.PutUint32(header[12:], TypeExecute)
	binary.BigEndian.PutUint32(header[16:], 0)
	binary.BigEndian.PutUint32(header[20:], 0)
	binary.BigEndian.PutUint32(header[24:], 0)

	hdr, err := ParseHeader(header)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if !hdr.Swapped {
		t.Fatalf("expected Swapped=true for a big-endian header")
	}
	if hdr.FileType != TypeExecute {
		t.Fatalf("expected FileType to decode correctly once swapped, got 0x%x", hdr.FileType)
	}
}
