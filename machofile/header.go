// Package machofile is the object-file parser this backend treats as an
// external collaborator: it recovers a section list and a thread-context
// count from a Mach-O core image, the way debug/macho recovers them for a
// normal executable. It wraps debug/macho's header knowledge by hand for the
// load commands debug/macho doesn't expose (LC_THREAD/LC_UNIXTHREAD) and
// decodes raw header bytes with github.com/lunixbochs/struc so the
// MH_CIGAM/MH_CIGAM_64 byte-swap case falls out of picking a ByteOrder rather
// than swapping fields one at a time.
package machofile

import (
	"bytes"
	"encoding/binary"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Mach-O header magics, bit-exact.
const (
	MagicMachO32    = 0xfeedface
	MagicMachO64    = 0xfeedfacf
	MagicMachOCigam = 0xcefaedfe
	MagicMachOCigam64 = 0xcffaedfe
)

// File types used by this backend.
const (
	TypeExecute  = 0x2
	TypeCore     = 0x4
	TypeDylinker = 0x7
)

// Flags used by this backend.
const (
	FlagDyldLink = 0x4
)

// Load commands this backend cares about. Everything else is skipped using
// cmdsize, matching how a debugger's object-file parser walks load commands
// it doesn't understand.
const (
	lcSegment     = 0x1
	lcThread      = 0x4
	lcUnixThread  = 0x5
	lcSegment64   = 0x19
)

// VM protection bits, as stored in segment_command{,_64}.initprot.
const (
	vmProtRead    = 0x1
	vmProtWrite   = 0x2
	vmProtExecute = 0x4
)

// HeaderSize32 and HeaderSize64 are the on-disk sizes of mach_header and
// mach_header_64. Detector reads the larger so either fits.
const (
	HeaderSize32 = 28
	HeaderSize64 = 32
)

var errShortHeader = errors.New("short read of mach_header")
var errBadMagic = errors.New("unrecognized mach_header magic")

// machHeader32 mirrors mach_header; every field is 4 bytes so no struc tags
// are needed beyond the natural Go type sizes.
type machHeader32 struct {
	Magic      uint32
	CPUType    int32
	CPUSubtype int32
	FileType   uint32
	NCmds      uint32
	SizeOfCmds uint32
	Flags      uint32
}

// machHeader64 mirrors mach_header_64: mach_header plus a trailing reserved
// field.
type machHeader64 struct {
	machHeader32
	Reserved uint32
}

// Header is the decoded, byte-order-normalized subset of a Mach-O header
// this backend needs.
type Header struct {
	Magic      uint32
	CPUType    int32
	CPUSubtype int32
	FileType   uint32
	NCmds      uint32
	SizeOfCmds uint32
	Flags      uint32
	Bits       int // 32 or 64
	Order      binary.ByteOrder
	Swapped    bool
}

// ParseHeader decodes a mach_header or mach_header_64 from raw, classifying
// the magic per the original algorithm: MH_MAGIC/MH_MAGIC_64 are accepted
// directly; MH_CIGAM/MH_CIGAM_64 mean every 32-bit field (including magic
// itself) must be read with the opposite byte order. Any other leading value
// is rejected.
func ParseHeader(raw []byte) (Header, error) {
	if len(raw) < HeaderSize32 {
		return Header{}, errShortHeader
	}
	// Classify using a little-endian read of the first 4 bytes: a core
	// produced on a little-endian host presents its magic directly in that
	// order, and a core produced on a big-endian host presents the
	// byte-reversed MH_CIGAM family instead.
	probe := binary.LittleEndian.Uint32(raw[:4])
	var bits int
	var order binary.ByteOrder
	var swapped bool
	switch probe {
	case MagicMachO32:
		bits, order, swapped = 32, binary.LittleEndian, false
	case MagicMachO64:
		bits, order, swapped = 64, binary.LittleEndian, false
	case MagicMachOCigam:
		bits, order, swapped = 32, binary.BigEndian, true
	case MagicMachOCigam64:
		bits, order, swapped = 64, binary.BigEndian, true
	default:
		return Header{}, errBadMagic
	}
	size := HeaderSize32
	if bits == 64 {
		size = HeaderSize64
	}
	if len(raw) < size {
		return Header{}, errShortHeader
	}
	var h32 machHeader32
	if err := struc.UnpackWithOrder(bytes.NewReader(raw[:size]), &h32, order); err != nil {
		return Header{}, errors.Wrap(err, "decoding mach_header")
	}
	return Header{
		Magic:      h32.Magic,
		CPUType:    h32.CPUType,
		CPUSubtype: h32.CPUSubtype,
		FileType:   h32.FileType,
		NCmds:      h32.NCmds,
		SizeOfCmds: h32.SizeOfCmds,
		Flags:      h32.Flags,
		Bits:       bits,
		Order:      order,
		Swapped:    swapped,
	}, nil
}
