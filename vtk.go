package pluto

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// VTK coordinate blocks and cell data payloads are 4-byte floats.
const vtkCoordElemSize = 4

// posReader is a buffered line reader that tracks the absolute byte
// position in the underlying stream, so header scanning can interleave line
// reads with skips over binary blocks.
type posReader struct {
	r   *bufio.Reader
	pos int64
}

// readLine returns the next line including its trailing newline. At end of
// file it returns what remains with io.EOF.
func (p *posReader) readLine() (string, error) {
	line, err := p.r.ReadString('\n')
	p.pos += int64(len(line))
	return line, err
}

// skip advances past n bytes of binary payload.
func (p *posReader) skip(n int64) error {
	m, err := p.r.Discard(int(n))
	p.pos += int64(m)
	return err
}

// scanVTKOffsets scans the header of a legacy-VTK file and records the byte
// offset of each variable's binary payload. Coordinate blocks are skipped
// (the geometry comes from the grid file); a CELL_DATA marker declares the
// per-variable byte extent; each SCALARS marker is followed by one
// LOOKUP_TABLE line, after which the binary block for that variable starts.
func scanVTKOffsets(path string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vtk file open failed: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	pr := &posReader{r: bufio.NewReader(f)}
	offsets := make(map[string]int64)
	blockSize := int64(-1)

	for {
		line, err := pr.readLine()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("vtk header read failed: %w", err)
		}
		fields := strings.Fields(line)
		if len(fields) > 0 {
			switch fields[0] {
			case "X_COORDINATES", "Y_COORDINATES", "Z_COORDINATES":
				n, convErr := strconv.ParseInt(fields[1], 10, 64)
				if convErr != nil {
					return nil, fmt.Errorf("%w: %s: invalid coordinate count %q", ErrFormat, path, fields[1])
				}
				// Skip the coordinate block and its trailing newline.
				if skipErr := pr.skip(n*vtkCoordElemSize + 1); skipErr != nil {
					return nil, fmt.Errorf("%w: %s: truncated coordinate block", ErrFormat, path)
				}

			case "CELL_DATA":
				n, convErr := strconv.ParseInt(fields[1], 10, 64)
				if convErr != nil {
					return nil, fmt.Errorf("%w: %s: invalid cell count %q", ErrFormat, path, fields[1])
				}
				blockSize = n * vtkCoordElemSize

			case "SCALARS":
				if blockSize < 0 {
					return nil, fmt.Errorf("%w: %s: SCALARS before CELL_DATA", ErrFormat, path)
				}
				if len(fields) < 2 {
					return nil, fmt.Errorf("%w: %s: SCALARS marker without a name", ErrFormat, path)
				}
				name := fields[1]
				// One LOOKUP_TABLE line separates the marker from the data.
				if _, lutErr := pr.readLine(); lutErr != nil && !errors.Is(lutErr, io.EOF) {
					return nil, fmt.Errorf("vtk header read failed: %w", lutErr)
				}
				offsets[name] = pr.pos
				if skipErr := pr.skip(blockSize); skipErr != nil {
					return nil, fmt.Errorf("%w: %s: truncated data block for %q", ErrFormat, path, name)
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}
	return offsets, nil
}
