package pluto

import "fmt"

// AxisRange selects a sub-range of one grid axis. The zero value selects the
// whole axis. Use At for a single point index and Span/SpanStep for
// half-open ranges; negative bounds count from the end of the axis.
type AxisRange struct {
	Start, Stop, Step int

	point bool
	span  bool
}

// At selects the single point index i, which becomes a length-1 range.
func At(i int) AxisRange {
	return AxisRange{Start: i, point: true}
}

// Span selects the half-open range [start, stop) with step 1.
func Span(start, stop int) AxisRange {
	return AxisRange{Start: start, Stop: stop, Step: 1, span: true}
}

// SpanStep selects the half-open range [start, stop) with the given step.
func SpanStep(start, stop, step int) AxisRange {
	return AxisRange{Start: start, Stop: stop, Step: step, span: true}
}

// normalize resolves an AxisRange against an axis of dim points: negative
// bounds are counted from the end, a point index becomes a length-1 range,
// and out-of-bounds values are rejected. Normalizing an already normalized
// range is a no-op.
func (r AxisRange) normalize(dim int) (AxisRange, error) {
	if !r.point && !r.span {
		if r.Start != 0 || r.Stop != 0 || r.Step != 0 {
			return AxisRange{}, fmt.Errorf("%w: axis range must be built with At, Span or SpanStep", ErrIndexOutOfRange)
		}
		return AxisRange{Start: 0, Stop: dim, Step: 1, span: true}, nil
	}

	if r.point {
		i := r.Start
		if i < 0 {
			i += dim
		}
		if i < 0 || i >= dim {
			return AxisRange{}, fmt.Errorf("%w: point index %d on axis of %d points", ErrIndexOutOfRange, r.Start, dim)
		}
		return AxisRange{Start: i, Stop: i + 1, Step: 1, span: true}, nil
	}

	start, stop, step := r.Start, r.Stop, r.Step
	if step == 0 {
		step = 1
	}
	if step < 0 {
		return AxisRange{}, fmt.Errorf("%w: negative step %d", ErrIndexOutOfRange, step)
	}
	if start < 0 {
		start += dim
	}
	if stop < 0 {
		stop += dim
	}
	if start < 0 || start >= dim || stop > dim || stop <= start {
		return AxisRange{}, fmt.Errorf("%w: range [%d, %d) on axis of %d points", ErrIndexOutOfRange, r.Start, r.Stop, dim)
	}
	return AxisRange{Start: start, Stop: stop, Step: step, span: true}, nil
}

// length returns the number of points a normalized range selects.
func (r AxisRange) length() int {
	return (r.Stop - r.Start + r.Step - 1) / r.Step
}

// Slice returns a derived grid narrowed to the given per-axis ranges. All
// three axes must be specified even when the grid is logically
// lower-dimensional. The derived grid owns its axis arrays and shares the
// coordinate system and indexing convention; the receiver is not modified.
//
// A length-1 result along an axis still counts toward Dims but is filtered
// out of the reduced dimensions, like any other singleton axis.
func (g *Grid) Slice(ranges [3]AxisRange) (*Grid, error) {
	out := &Grid{coordinates: g.coordinates, order: g.order}
	for i, r := range ranges {
		nr, err := r.normalize(g.Dims[i])
		if err != nil {
			return nil, fmt.Errorf("axis %d: %w", i+1, err)
		}
		n := nr.length()
		a := Axis{
			Left:   make([]float64, 0, n),
			Right:  make([]float64, 0, n),
			Center: make([]float64, 0, n),
			Width:  make([]float64, 0, n),
		}
		src := g.Axes[i]
		for j := nr.Start; j < nr.Stop; j += nr.Step {
			a.Left = append(a.Left, src.Left[j])
			a.Right = append(a.Right, src.Right[j])
			a.Center = append(a.Center, src.Center[j])
			a.Width = append(a.Width, src.Width[j])
		}
		out.Axes[i] = a
		out.Dims[i] = n
	}
	return out, nil
}
