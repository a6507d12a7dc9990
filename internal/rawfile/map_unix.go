//go:build unix

package rawfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Map maps length bytes of the file at path starting at offset. The mapping
// offset is aligned down to the page size; Data is re-sliced to the
// requested range. The file descriptor is closed before returning, the
// mapping itself stays valid until Region.Close.
func Map(path string, offset, length int64) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("data file open failed: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("data file stat failed: %w", err)
	}
	if offset < 0 || offset+length > fi.Size() {
		return nil, fmt.Errorf("range [%d, %d) beyond %s size %d", offset, offset+length, path, fi.Size())
	}
	if length == 0 {
		return &Region{}, nil
	}

	pageSize := int64(os.Getpagesize())
	aligned := offset &^ (pageSize - 1)
	diff := offset - aligned

	mapped, err := unix.Mmap(int(f.Fd()), aligned, int(diff+length), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap of %s failed: %w", path, err)
	}
	return &Region{
		Data:    mapped[diff : diff+length],
		release: func() error { return unix.Munmap(mapped) },
	}, nil
}
