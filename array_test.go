package pluto

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRaw(t *testing.T) {
	vals := rampFloats(0, 24)

	t.Run("float64 little-endian", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "field.dbl", encodeFloats64(binary.LittleEndian, vals))
		a, err := LoadRaw(path, []int{4, 6}, 8, binary.LittleEndian)
		require.NoError(t, err)
		require.Equal(t, []int{4, 6}, a.Shape)
		require.Equal(t, []int{6, 1}, a.Strides)
		require.Equal(t, vals, a.Data)
		require.InDelta(t, 7.0, a.At(1, 1), 1e-12)
		// LoadRaw always owns its data; release is a no-op.
		require.NoError(t, a.release())
		require.Equal(t, vals, a.Data)
	})

	t.Run("float32 big-endian", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "field.flt", encodeFloats32(binary.BigEndian, vals))
		a, err := LoadRaw(path, nil, 4, binary.BigEndian)
		require.NoError(t, err)
		require.Equal(t, []int{24}, a.Shape)
		require.Equal(t, vals, a.Data)
	})
}

func TestLoadRawErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "field.dbl", encodeFloats64(binary.LittleEndian, rampFloats(0, 10)))

	_, err := LoadRaw(path, []int{3, 3}, 8, binary.LittleEndian)
	require.ErrorIs(t, err, ErrFormat)

	_, err = LoadRaw(path, nil, 3, binary.LittleEndian)
	require.ErrorIs(t, err, ErrFormat)

	odd := writeFile(t, dir, "odd.dbl", []byte{1, 2, 3})
	_, err = LoadRaw(odd, nil, 8, binary.LittleEndian)
	require.ErrorIs(t, err, ErrFormat)

	_, err = LoadRaw(dir+"/missing.dbl", nil, 8, binary.LittleEndian)
	require.Error(t, err)
}

func TestArrayAt(t *testing.T) {
	shape := []int{2, 3, 4}
	data := rampFloats(0, 24)

	row := &Array{Shape: shape, Strides: stridesFor(shape, RowMajor), Data: data}
	require.Equal(t, []int{12, 4, 1}, row.Strides)
	require.InDelta(t, 0.0, row.At(0, 0, 0), 1e-12)
	require.InDelta(t, 1.0, row.At(0, 0, 1), 1e-12)
	require.InDelta(t, 12.0, row.At(1, 0, 0), 1e-12)

	col := &Array{Shape: shape, Strides: stridesFor(shape, ColumnMajor), Data: data}
	require.Equal(t, []int{1, 2, 6}, col.Strides)
	require.InDelta(t, 1.0, col.At(1, 0, 0), 1e-12)
	require.InDelta(t, 6.0, col.At(0, 0, 1), 1e-12)

	require.Panics(t, func() { row.At(0, 0) })
	require.Panics(t, func() { row.At(0, 0, 4) })
	require.Panics(t, func() { row.At(-1, 0, 0) })
}

func TestDecodeFloats(t *testing.T) {
	vals := []float64{1.5, -2.25, 3.125}

	t.Run("alias on matching encoding", func(t *testing.T) {
		raw := encodeFloats64(binary.LittleEndian, vals)
		data, aliased := decodeFloats(raw, len(vals), 8, binary.LittleEndian)
		require.Equal(t, hostLittleEndian, aliased)
		require.Equal(t, vals, data)
	})

	t.Run("copy on foreign byte order", func(t *testing.T) {
		raw := encodeFloats64(binary.BigEndian, vals)
		data, aliased := decodeFloats(raw, len(vals), 8, binary.BigEndian)
		require.False(t, aliased)
		require.Equal(t, vals, data)
	})

	t.Run("widen float32", func(t *testing.T) {
		raw := encodeFloats32(binary.LittleEndian, vals)
		data, aliased := decodeFloats(raw, len(vals), 4, binary.LittleEndian)
		require.False(t, aliased)
		require.Equal(t, vals, data)
	})
}
