// Package rawio provides read-only and read-write memory mapping of
// input files, giving every other package in this module a zero-copy
// view over archive and object data instead of a read()'d copy.
package rawio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Prot selects the protection requested for a mapping.
type Prot int

const (
	ProtRead Prot = iota
	ProtReadWrite
)

// Mapping is a zero-copy view over a file or an anonymous region.
//
// A Mapping obtained from Map owns its bytes; Unmap releases them but
// never touches a caller-supplied descriptor, which the caller retains
// ownership of throughout.
type Mapping struct {
	data   []byte
	owned  bool // never set: Map closes the fd it opens before returning
	closed bool
}

// Bytes returns the mapped region. It is empty (never nil-panic-prone)
// for a zero-size input.
func (m *Mapping) Bytes() []byte {
	if m == nil {
		return nil
	}
	return m.data
}

// Len reports the size of the mapped region.
func (m *Mapping) Len() int {
	return len(m.data)
}

// Map maps the file at path. The descriptor is opened close-on-exec,
// stat'd, mapped private with the requested protection, then closed;
// the returned Mapping owns the mapping but not any descriptor (the
// one used to create it has already been closed by the time Map
// returns).
func Map(path string, prot Prot) (*Mapping, error) {
	f, err := os.OpenFile(path, openFlags(prot), 0)
	if err != nil {
		return nil, fmt.Errorf("rawio: open %s: %w", path, err)
	}
	defer f.Close()

	return MapFD(int(f.Fd()), prot)
}

// MapFD maps an already-open descriptor. The caller retains ownership
// of fd; Unmap never closes it.
func MapFD(fd int, prot Prot) (*Mapping, error) {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, fmt.Errorf("rawio: fstat: %w", err)
	}

	size := st.Size
	if size == 0 {
		return &Mapping{data: []byte{}}, nil
	}

	prt := unix.PROT_READ
	if prot == ProtReadWrite {
		prt |= unix.PROT_WRITE
	}

	data, err := unix.Mmap(fd, 0, int(size), prt, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("rawio: mmap: %w", err)
	}

	return &Mapping{data: data}, nil
}

// MapAnon creates an anonymous read-write mapping of the requested
// size, used by the archive merger to compose a new
// archive image entirely in memory before it is ever named on disk.
func MapAnon(size int) (*Mapping, error) {
	if size == 0 {
		return &Mapping{data: []byte{}}, nil
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("rawio: anonymous mmap: %w", err)
	}
	return &Mapping{data: data}, nil
}

// Unmap releases the mapping. It is a no-op on an already-unmapped or
// zero-size Mapping.
func (m *Mapping) Unmap() error {
	if m == nil || m.closed || len(m.data) == 0 {
		if m != nil {
			m.closed = true
		}
		return nil
	}
	m.closed = true
	return unix.Munmap(m.data)
}

func openFlags(prot Prot) int {
	if prot == ProtReadWrite {
		return os.O_RDWR
	}
	return os.O_RDONLY
}
