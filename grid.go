package pluto

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Grid file header markers.
const (
	gridHeaderMarker   = "# *****"
	gridGeometryPrefix = "# GEOMETRY"
)

// IndexOrder selects the axis order of the data shape reported for stored
// variable arrays.
type IndexOrder int

const (
	// RowMajor orders the data shape slowest-axis-first (x3, x2, x1), so the
	// last index varies fastest. This matches the on-disk element order and
	// is the only order the HDF5 layout accepts.
	RowMajor IndexOrder = iota

	// ColumnMajor keeps the file axis order (x1, x2, x3); the first index
	// varies fastest. No data is moved, only the reported shape and strides
	// differ.
	ColumnMajor
)

// Axis holds the geometry arrays of one grid axis. All four slices have the
// same length, the axis point count.
type Axis struct {
	Left   []float64 // left cell interfaces
	Right  []float64 // right cell interfaces
	Center []float64 // cell centers, (left+right)/2
	Width  []float64 // cell widths, right-left
}

// Extent returns the domain length of the axis.
func (a Axis) Extent() float64 {
	if len(a.Left) == 0 {
		return 0
	}
	return a.Right[len(a.Right)-1] - a.Left[0]
}

// edges returns the cell interface positions, one more than the point count.
func (a Axis) edges() []float64 {
	e := make([]float64, 0, len(a.Left)+1)
	e = append(e, a.Left...)
	return append(e, a.Right[len(a.Right)-1])
}

// Grid holds the immutable geometry of a simulation run: three axes with
// cell interfaces, centers and widths. A Grid is never mutated after
// construction; Slice derives new grids instead.
type Grid struct {
	Axes [3]Axis
	Dims [3]int

	coordinates string
	order       IndexOrder
}

// ParseGrid reads a text grid definition file. The body contains, for each
// of exactly three axes, a line with the axis point count followed by that
// many "index left right" records. An optional header block is delimited by
// a marker line appearing exactly twice; inside it a "# GEOMETRY <name>"
// line may declare the coordinate system.
//
// If system is empty the coordinate system is taken from the header; if the
// header does not declare one either, the grid is left without a coordinate
// system and coordinate-dependent accessors fail until SetCoordinateSystem
// is called.
func ParseGrid(path string, system string, order IndexOrder) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("grid file open failed: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	g := &Grid{order: order}

	var (
		inHeader     bool
		headerSystem string
		axis         int
		remaining    int
	)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, gridHeaderMarker) {
			inHeader = !inHeader
			continue
		}
		if inHeader {
			if strings.HasPrefix(line, gridGeometryPrefix) {
				headerSystem = strings.ToLower(strings.TrimSpace(line[len(gridGeometryPrefix):]))
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if remaining == 0 {
			// Expecting the point count of the next axis.
			if len(fields) != 1 {
				return nil, fmt.Errorf("%w: %s: expected axis point count, got %q", ErrFormat, path, line)
			}
			if axis >= 3 {
				return nil, fmt.Errorf("%w: %s: more than 3 axis blocks", ErrFormat, path)
			}
			d, err := strconv.Atoi(fields[0])
			if err != nil || d <= 0 {
				return nil, fmt.Errorf("%w: %s: invalid axis point count %q", ErrFormat, path, fields[0])
			}
			g.Dims[axis] = d
			g.Axes[axis].Left = make([]float64, 0, d)
			g.Axes[axis].Right = make([]float64, 0, d)
			remaining = d
			continue
		}

		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: %s: expected \"index left right\" record, got %q", ErrFormat, path, line)
		}
		left, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: invalid interface value %q", ErrFormat, path, fields[1])
		}
		right, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: invalid interface value %q", ErrFormat, path, fields[2])
		}
		g.Axes[axis].Left = append(g.Axes[axis].Left, left)
		g.Axes[axis].Right = append(g.Axes[axis].Right, right)
		remaining--
		if remaining == 0 {
			axis++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("grid file read failed: %w", err)
	}
	if inHeader {
		return nil, fmt.Errorf("%w: %s: unterminated header block", ErrFormat, path)
	}
	if axis != 3 || remaining != 0 {
		return nil, fmt.Errorf("%w: %s: point counts do not match data records (%d axes complete)", ErrFormat, path, axis)
	}

	for i := range g.Axes {
		a := &g.Axes[i]
		a.Center = make([]float64, len(a.Left))
		floats.AddTo(a.Center, a.Left, a.Right)
		floats.Scale(0.5, a.Center)
		a.Width = make([]float64, len(a.Left))
		floats.SubTo(a.Width, a.Right, a.Left)
	}

	if system == "" {
		system = headerSystem
	}
	if system != "" {
		if err := g.SetCoordinateSystem(system); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Coordinates returns the coordinate-system name, or "" if none is set.
func (g *Grid) Coordinates() string { return g.coordinates }

// Order returns the indexing convention of the grid.
func (g *Grid) Order() IndexOrder { return g.order }

// SetCoordinateSystem sets the coordinate system of a grid that does not
// have one yet. The coordinate system is immutable once set.
func (g *Grid) SetCoordinateSystem(system string) error {
	if g.coordinates != "" {
		return fmt.Errorf("coordinate system already set to %q", g.coordinates)
	}
	if _, ok := baseCoordinateNames[system]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedCoordinateSystem, system)
	}
	g.coordinates = system
	return nil
}

// CellCount returns the total number of cells, the product of all axis
// point counts.
func (g *Grid) CellCount() int {
	n := 1
	for _, d := range g.Dims {
		n *= d
	}
	return n
}

// ReducedAxes returns the indices of the axes with more than one point, in
// file order. These are the axes that carry spatial resolution.
func (g *Grid) ReducedAxes() []int {
	var axes []int
	for i, d := range g.Dims {
		if d > 1 {
			axes = append(axes, i)
		}
	}
	return axes
}

// ReducedDims returns the point counts of the reduced axes, in file order.
func (g *Grid) ReducedDims() []int {
	var dims []int
	for _, d := range g.Dims {
		if d > 1 {
			dims = append(dims, d)
		}
	}
	return dims
}

// DataShape returns the shape a stored variable array has under the grid's
// indexing convention. Singleton axes are collapsed; a fully singleton grid
// reports shape [1].
func (g *Grid) DataShape() []int {
	dims := g.ReducedDims()
	if len(dims) == 0 {
		return []int{1}
	}
	if g.order == RowMajor {
		for i, j := 0, len(dims)-1; i < j; i, j = i+1, j-1 {
			dims[i], dims[j] = dims[j], dims[i]
		}
	}
	return dims
}

// gridKind classifies canonical grid quantity names.
type gridKind int

const (
	gridCenter gridKind = iota
	gridLeft
	gridRight
	gridWidth
	gridExtent
)

// parseGridName splits a canonical grid quantity name (x1, x2l, dx3, Lx1)
// into axis index and kind.
func parseGridName(s string) (axis int, kind gridKind, ok bool) {
	switch {
	case strings.HasPrefix(s, "Lx"):
		kind = gridExtent
		s = s[2:]
	case strings.HasPrefix(s, "dx"):
		kind = gridWidth
		s = s[2:]
	case strings.HasPrefix(s, "x"):
		s = s[1:]
		switch {
		case strings.HasSuffix(s, "l"):
			kind = gridLeft
			s = s[:len(s)-1]
		case strings.HasSuffix(s, "r"):
			kind = gridRight
			s = s[:len(s)-1]
		default:
			kind = gridCenter
		}
	default:
		return 0, 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 3 {
		return 0, 0, false
	}
	return n - 1, kind, true
}

// Var returns a grid quantity by canonical storage name or, when a
// coordinate system is set, by its coordinate-system alias. Array-valued
// quantities (centers, interfaces, widths) are returned as []float64;
// domain lengths as float64.
func (g *Grid) Var(name string) (any, error) {
	canon := name
	if g.coordinates != "" {
		m, err := GridNameMap(g.coordinates)
		if err != nil {
			return nil, err
		}
		if c, ok := m[name]; ok {
			canon = c
		}
	}
	axis, kind, ok := parseGridName(canon)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a grid quantity", ErrUnknownVariable, name)
	}
	a := g.Axes[axis]
	switch kind {
	case gridCenter:
		return a.Center, nil
	case gridLeft:
		return a.Left, nil
	case gridRight:
		return a.Right, nil
	case gridWidth:
		return a.Width, nil
	case gridExtent:
		return a.Extent(), nil
	}
	return nil, fmt.Errorf("%w: %q is not a grid quantity", ErrUnknownVariable, name)
}
