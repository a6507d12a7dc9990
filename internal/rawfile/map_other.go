//go:build !unix

package rawfile

import (
	"fmt"
	"os"
)

// Map reads length bytes of the file at path starting at offset into a
// buffer. Platforms without mmap support fall back to plain reads; the
// Region contract is the same.
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

	buf := make([]byte, length)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("data file read failed: %w", err)
	}
	return &Region{Data: buf}, nil
}
