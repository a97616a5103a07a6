// Package mmap maps a register window from a device node (/dev/mem, a UIO
// or PCI resource file) or a regular file into memory.
package mmap

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/lunixbochs/regio/go/mmio"
)

type Options struct {
	// Offset is the byte offset of the window in the file. It does not need
	// to be page aligned.
	Offset int64
	// Size of the window. Zero maps from Offset to the end of the file.
	Size int64
	// Create a regular file if needed and grow it to Offset+Size.
	Create bool
	// Open with O_SYNC, which /dev/mem needs for uncached access.
	Sync bool
}

type Region struct {
	Path   string
	Offset int64
	Size   int64

	// page aligned mapping, and the window inside it
	mapping []byte
	data    []byte
}

func Open(path string, opts Options) (*Region, error) {
	if opts.Offset < 0 || opts.Size < 0 {
		return nil, errors.Errorf("%s: negative offset or size", path)
	}
	flags := os.O_RDWR
	if opts.Create {
		if opts.Size == 0 {
			return nil, errors.Errorf("%s: size required to create", path)
		}
		flags |= os.O_CREATE
	}
	if opts.Sync {
		flags |= os.O_SYNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	// the mapping outlives the descriptor
	defer f.Close()

	fd := int(f.Fd())
	size := opts.Size
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, errors.Wrapf(err, "%s: fstat", path)
	}
	regular := st.Mode&unix.S_IFMT == unix.S_IFREG
	if opts.Create && regular && st.Size < opts.Offset+opts.Size {
		if err := unix.Ftruncate(fd, opts.Offset+opts.Size); err != nil {
			return nil, errors.Wrapf(err, "%s: ftruncate", path)
		}
	}
	if size == 0 {
		size = st.Size - opts.Offset
		if size <= 0 {
			return nil, errors.Errorf("%s: size required (file reports %d bytes)", path, st.Size)
		}
	}

	page := int64(unix.Getpagesize())
	start := opts.Offset &^ (page - 1)
	pad := opts.Offset - start
	mapping, err := unix.Mmap(fd, start, int(pad+size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: mmap %#x+%#x", path, start, pad+size)
	}
	return &Region{
		Path:    path,
		Offset:  opts.Offset,
		Size:    size,
		mapping: mapping,
		data:    mapping[pad : pad+size],
	}, nil
}

// Bytes returns the mapped window. It is only valid until Close.
func (r *Region) Bytes() []byte { return r.data }

// Contains reports whether n bytes at byte offset off fall inside the window.
func (r *Region) Contains(off, n uint64) bool {
	size := uint64(len(r.data))
	return n <= size && off <= size-n
}

// Accessor builds a register accessor over the window. The region must stay
// open for as long as the accessor is used.
func (r *Region) Accessor(wordWidth, bulkWidth uint, littleEndian bool) (*mmio.Accessor, error) {
	if r.data == nil {
		return nil, errors.Errorf("%s: region is closed", r.Path)
	}
	return mmio.NewFromBytes(r.data, wordWidth, bulkWidth, littleEndian)
}

func (r *Region) Close() error {
	if r.mapping == nil {
		return nil
	}
	err := unix.Munmap(r.mapping)
	r.mapping, r.data = nil, nil
	return errors.Wrapf(err, "%s: munmap", r.Path)
}

func (r *Region) String() string {
	return fmt.Sprintf("%s[%#x-%#x]", r.Path, r.Offset, r.Offset+r.Size)
}
