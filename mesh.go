package pluto

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Mesh is a cell mesh over the reduced axes of a grid. For a single reduced
// axis only Line is set; for two reduced axes X and Y hold the mesh-grid
// pair, shaped (len(second axis), len(first axis)) with the first axis
// varying along rows. Labels names the mesh coordinates.
type Mesh struct {
	Labels []string
	Line   []float64
	X, Y   *mat.Dense
}

// meshGrid builds the coordinate matrices for axes x and y. Both results
// have len(y) rows and len(x) columns.
func meshGrid(x, y []float64) (X, Y *mat.Dense) {
	rows, cols := len(y), len(x)
	X = mat.NewDense(rows, cols, nil)
	Y = mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			X.Set(i, j, x[j])
			Y.Set(i, j, y[i])
		}
	}
	return X, Y
}

// MeshCenter returns the cell center mesh in native coordinates: a 1D line
// for one reduced axis, a mesh-grid pair for two. Grids with three reduced
// axes are not supported.
func (g *Grid) MeshCenter() (*Mesh, error) {
	return g.mesh(func(a Axis) []float64 { return a.Center })
}

// MeshEdge returns the cell edge mesh in native coordinates. Edge arrays
// have one more point per axis than the center arrays.
func (g *Grid) MeshEdge() (*Mesh, error) {
	return g.mesh(Axis.edges)
}

func (g *Grid) mesh(points func(Axis) []float64) (*Mesh, error) {
	axes := g.ReducedAxes()
	switch len(axes) {
	case 1:
		return &Mesh{
			Labels: []string{axisName(axes[0])},
			Line:   points(g.Axes[axes[0]]),
		}, nil
	case 2:
		X, Y := meshGrid(points(g.Axes[axes[0]]), points(g.Axes[axes[1]]))
		return &Mesh{
			Labels: []string{axisName(axes[0]), axisName(axes[1])},
			X:      X,
			Y:      Y,
		}, nil
	}
	return nil, fmt.Errorf("%w: mesh construction for %d reduced axes", ErrNotImplemented, len(axes))
}

func axisName(axis int) string {
	return fmt.Sprintf("x%d", axis+1)
}

// MeshCenterCartesian returns the cell center mesh projected to Cartesian
// coordinates. See MeshEdgeCartesian for the supported projections.
func (g *Grid) MeshCenterCartesian() (*Mesh, error) {
	m, err := g.MeshCenter()
	if err != nil {
		return nil, err
	}
	return g.projectMesh(m)
}

// MeshEdgeCartesian returns the cell edge mesh projected to Cartesian
// coordinates.
//
// Projections are defined for 2D meshes only, and per coordinate system for
// specific reduced axis pairs: cartesian and cylindrical meshes pass through
// unchanged; polar (r, phi) applies the standard polar projection and polar
// (r, z) is the identity; spherical (r, theta) projects to the meridional
// plane and spherical (r, phi) to the equatorial plane at the first fixed
// polar angle. Any other combination is a deliberate scope limit and fails
// with ErrNotImplemented.
func (g *Grid) MeshEdgeCartesian() (*Mesh, error) {
	m, err := g.MeshEdge()
	if err != nil {
		return nil, err
	}
	return g.projectMesh(m)
}

func (g *Grid) projectMesh(m *Mesh) (*Mesh, error) {
	if g.coordinates == "" {
		return nil, fmt.Errorf("%w: coordinate system not set", ErrUnsupportedCoordinateSystem)
	}
	if m.X == nil {
		return nil, fmt.Errorf("%w: cartesian projection needs a 2D mesh", ErrNotImplemented)
	}
	axes := g.ReducedAxes()
	pair := [2]int{axes[0], axes[1]}

	switch g.coordinates {
	case Cartesian:
		labels, err := g.displayAxisLabels(pair)
		if err != nil {
			return nil, err
		}
		return &Mesh{Labels: labels, X: m.X, Y: m.Y}, nil

	case Cylindrical:
		if pair == [2]int{0, 1} {
			return &Mesh{Labels: []string{"r", "z"}, X: m.X, Y: m.Y}, nil
		}

	case Polar:
		switch pair {
		case [2]int{0, 1}: // (r, phi): standard polar projection
			X := applyBinary(m.X, m.Y, func(r, phi float64) float64 { return r * math.Cos(phi) })
			Y := applyBinary(m.X, m.Y, func(r, phi float64) float64 { return r * math.Sin(phi) })
			return &Mesh{Labels: []string{"x", "y"}, X: X, Y: Y}, nil
		case [2]int{0, 2}: // (r, z): identity
			return &Mesh{Labels: []string{"r", "z"}, X: m.X, Y: m.Y}, nil
		}

	case Spherical:
		switch pair {
		case [2]int{0, 1}: // (r, theta): meridional plane
			X := applyBinary(m.X, m.Y, func(r, theta float64) float64 { return r * math.Sin(theta) })
			Y := applyBinary(m.X, m.Y, func(r, theta float64) float64 { return r * math.Cos(theta) })
			return &Mesh{Labels: []string{"x", "z"}, X: X, Y: Y}, nil
		case [2]int{0, 2}: // (r, phi): equatorial plane at the fixed polar angle
			sinTheta := math.Sin(g.Axes[1].Center[0])
			X := applyBinary(m.X, m.Y, func(r, phi float64) float64 { return r * sinTheta * math.Cos(phi) })
			Y := applyBinary(m.X, m.Y, func(r, phi float64) float64 { return r * sinTheta * math.Sin(phi) })
			return &Mesh{Labels: []string{"x", "y"}, X: X, Y: Y}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s projection for axis pair (x%d, x%d)",
		ErrNotImplemented, g.coordinates, pair[0]+1, pair[1]+1)
}

// displayAxisLabels resolves the display symbols of two axes.
func (g *Grid) displayAxisLabels(pair [2]int) ([]string, error) {
	disp, err := DisplayNameMap(g.coordinates)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 2)
	for i, axis := range pair {
		name := axisName(axis)
		if sym, ok := disp[name]; ok {
			labels[i] = sym
		} else {
			labels[i] = name
		}
	}
	return labels, nil
}

// applyBinary applies f elementwise over two equally shaped matrices.
func applyBinary(a, b *mat.Dense, f func(x, y float64) float64) *mat.Dense {
	rows, cols := a.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, f(a.At(i, j), b.At(i, j)))
		}
	}
	return out
}
