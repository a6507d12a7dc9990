package pluto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAxisRangeNormalize(t *testing.T) {
	tests := []struct {
		name    string
		r       AxisRange
		dim     int
		want    AxisRange
		wantErr bool
	}{
		{"zero value selects all", AxisRange{}, 10, AxisRange{Start: 0, Stop: 10, Step: 1, span: true}, false},
		{"span in bounds", Span(2, 7), 10, AxisRange{Start: 2, Stop: 7, Step: 1, span: true}, false},
		{"span with step", SpanStep(0, 10, 3), 10, AxisRange{Start: 0, Stop: 10, Step: 3, span: true}, false},
		{"negative bounds", Span(-4, -1), 10, AxisRange{Start: 6, Stop: 9, Step: 1, span: true}, false},
		{"point", At(3), 10, AxisRange{Start: 3, Stop: 4, Step: 1, span: true}, false},
		{"negative point", At(-1), 10, AxisRange{Start: 9, Stop: 10, Step: 1, span: true}, false},
		{"point out of range", At(10), 10, AxisRange{}, true},
		{"start out of range", Span(10, 12), 10, AxisRange{}, true},
		{"stop past end", Span(0, 11), 10, AxisRange{}, true},
		{"empty range", Span(5, 5), 10, AxisRange{}, true},
		{"inverted range", Span(7, 2), 10, AxisRange{}, true},
		{"negative step", SpanStep(0, 10, -1), 10, AxisRange{}, true},
		{"hand-built range", AxisRange{Start: 1, Stop: 5}, 10, AxisRange{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.r.normalize(tt.dim)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrIndexOutOfRange)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)

			// Normalizing a normalized range changes nothing.
			again, err := got.normalize(tt.dim)
			require.NoError(t, err)
			require.Equal(t, got, again)
		})
	}
}

func TestGridSlice(t *testing.T) {
	path := writeGridFile(t, t.TempDir(), [3]int{10, 9, 8}, "# GEOMETRY CARTESIAN")
	g, err := ParseGrid(path, "", RowMajor)
	require.NoError(t, err)

	sub, err := g.Slice([3]AxisRange{Span(2, 6), At(4), {}})
	require.NoError(t, err)

	require.Equal(t, [3]int{4, 1, 8}, sub.Dims)
	require.Equal(t, g.Coordinates(), sub.Coordinates())
	require.Equal(t, g.Order(), sub.Order())
	require.Equal(t, []int{0, 2}, sub.ReducedAxes())
	require.Equal(t, []int{8, 4}, sub.DataShape())

	require.Equal(t, g.Axes[0].Center[2:6], sub.Axes[0].Center)
	require.Equal(t, []float64{g.Axes[1].Center[4]}, sub.Axes[1].Center)
	require.Equal(t, g.Axes[2].Left, sub.Axes[2].Left)

	// The receiver is untouched.
	require.Equal(t, [3]int{10, 9, 8}, g.Dims)

	_, err = g.Slice([3]AxisRange{Span(0, 20), {}, {}})
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestGridSliceStep(t *testing.T) {
	path := writeGridFile(t, t.TempDir(), [3]int{10, 1, 1})
	g, err := ParseGrid(path, "", RowMajor)
	require.NoError(t, err)

	sub, err := g.Slice([3]AxisRange{SpanStep(1, 10, 3), {}, {}})
	require.NoError(t, err)
	require.Equal(t, 3, sub.Dims[0])
	require.Equal(t, []float64{1.5, 4.5, 7.5}, sub.Axes[0].Center)
}
