package pluto

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeGridFile writes a grid definition file with unit cells (left=i,
// right=i+1) per axis, like the upstream test data generator. header lines,
// if any, are wrapped in the marker block.
func writeGridFile(t *testing.T, dir string, dims [3]int, header ...string) string {
	t.Helper()
	var b strings.Builder
	if len(header) > 0 {
		b.WriteString("# ******************\n")
		for _, h := range header {
			b.WriteString(h + "\n")
		}
		b.WriteString("# ******************\n")
	}
	for _, d := range dims {
		fmt.Fprintf(&b, "%d\n", d)
		for i := 0; i < d; i++ {
			fmt.Fprintf(&b, " %d   %.12e    %.12e\n", i+1, float64(i), float64(i+1))
		}
	}
	path := filepath.Join(dir, gridFileName)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

// writeManifest writes a "<format>.out" manifest with one line per frame.
func writeManifest(t *testing.T, dir string, format Format, times []float64, mode, endian string, vars ...string) string {
	t.Helper()
	var b strings.Builder
	for i, tm := range times {
		fmt.Fprintf(&b, "%d %g %g %d %s %s %s\n", i, tm, 1e-3, (i+1)*10, mode, endian, strings.Join(vars, " "))
	}
	path := filepath.Join(dir, string(format)+".out")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

// encodeFloats64 encodes values with the given byte order.
func encodeFloats64(order binary.ByteOrder, vals []float64) []byte {
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		order.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// encodeFloats32 encodes values narrowed to float32.
func encodeFloats32(order binary.ByteOrder, vals []float64) []byte {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		order.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
	}
	return buf
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// rampFloats returns count values starting at base, increasing by 1.
func rampFloats(base float64, count int) []float64 {
	vals := make([]float64, count)
	for i := range vals {
		vals[i] = base + float64(i)
	}
	return vals
}

// writeDblRun writes a complete single-file dbl run: grid, manifest and one
// data file per frame. Variable values are base(var index)*10000 + frame*1000
// + cell index, so every (frame, variable, cell) triple is distinct.
func writeDblRun(t *testing.T, dir string, dims [3]int, frames int, vars ...string) {
	t.Helper()
	writeGridFile(t, dir, dims)
	times := make([]float64, frames)
	for i := range times {
		times[i] = 0.5 * float64(i)
	}
	writeManifest(t, dir, FormatDbl, times, "single_file", "little", vars...)

	cells := dims[0] * dims[1] * dims[2]
	for n := 0; n < frames; n++ {
		var buf bytes.Buffer
		for vi := range vars {
			base := float64(vi)*10000 + float64(n)*1000
			buf.Write(encodeFloats64(binary.LittleEndian, rampFloats(base, cells)))
		}
		writeFile(t, dir, fmt.Sprintf("data.%04d.dbl", n), buf.Bytes())
	}
}
