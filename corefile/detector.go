package corefile

import (
	"os"

	"github.com/gomacho/machocore/machofile"
)

// headerProbeSize is the number of bytes Detector reads from the candidate
// file: the larger of mach_header and mach_header_64, so either fits.
const headerProbeSize = machofile.HeaderSize64

// Detect reads the first headerProbeSize bytes of path and accepts it as a
// core-file candidate iff the read is exactly that many bytes, the header
// parses, and its filetype is MH_CORE. No heuristics beyond that; any I/O
// error rejects the file. A rejection is ErrNotACore, which by convention a
// caller iterating several detectors treats as "try the next one," not as a
// loud failure.
func Detect(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrNotACore
	}
	defer f.Close()

	buf := make([]byte, headerProbeSize)
	n, err := f.Read(buf)
	if err != nil || n != headerProbeSize {
		return nil, ErrNotACore
	}

	hdr, err := machofile.ParseHeader(buf)
	if err != nil {
		return nil, ErrNotACore
	}
	if hdr.FileType != machofile.TypeCore {
		return nil, ErrNotACore
	}

	return newCandidateSession(path), nil
}
