package corefile

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds surfaced verbatim to callers. NotACore is silent by
// convention — a plugin registry trying handlers in turn treats it as
// "try the next one," not as a loud failure.
var (
	ErrNotACore              = errors.New("not a Mach-O core file")
	ErrInvalidCoreModule     = errors.New("core module was never produced")
	ErrInvalidCoreObjectFile = errors.New("core object file has no backing data")
	ErrNoThreadContexts      = errors.New("core file does not contain LC_THREAD or LC_UNIXTHREAD data, or it is of an unsupported format")
	ErrNoSections            = errors.New("core file section list is empty")
	ErrInvalidRegionAddress  = errors.New("invalid address")
)

// UnmappedReadError reports that not a single byte of a read request could
// be served because the starting address itself is unmapped.
type UnmappedReadError struct {
	Addr uint64
}

func (e *UnmappedReadError) Error() string {
	return fmt.Sprintf("core file does not contain 0x%x", e.Addr)
}

// ErrUnmappedRead constructs the UnmappedRead error for addr.
func ErrUnmappedRead(addr uint64) error {
	return &UnmappedReadError{Addr: addr}
}
