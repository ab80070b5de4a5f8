package machofile

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// MappedFile is a core file mapped read-only into the process's address
// space. The core file is its own cache: there is no separate read buffer,
// so every File.Copy call is a bounds-checked slice copy out of data.
//
// Grounded on golang.org/x/sys/unix.Mmap rather than the raw syscall
// package rather than a hand-rolled mmap syscall wrapper.
type MappedFile struct {
	f    *os.File
	data []byte
}

// OpenMapped mmaps path read-only and returns the mapped bytes alongside the
// handle that owns them. Callers pass Data() to Open.
func OpenMapped(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open core file")
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "stat core file")
	}
	size := st.Size()
	if size == 0 {
		f.Close()
		return &MappedFile{f: f}, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "mmap core file")
	}
	return &MappedFile{f: f, data: data}, nil
}

// Data returns the mapped bytes. The slice is only valid until Close.
func (m *MappedFile) Data() []byte {
	return m.data
}

// Close unmaps and closes the backing file. Never issues writes back to the
// core; this backend only ever reads.
func (m *MappedFile) Close() error {
	var err error
	if m.data != nil {
		err = unix.Munmap(m.data)
		m.data = nil
	}
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}
