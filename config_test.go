package pluto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleIni = `
[Grid]

X1-grid    1    0.0    512    u    1.0
X2-grid    1    0.0    512    u    1.0
X3-grid    1    0.0    1     u    1.0

[Time]

CFL         0.4
tstop       10.0

[Static Grid Output]

uservar     0
output_dir  data
dbl         0.1   -1   single_file
`

func TestLoadIni(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pluto.ini", []byte(sampleIni))
	ini, err := LoadIni(path)
	require.NoError(t, err)

	sections := ini.Sections()
	require.Len(t, sections, 3)
	require.Equal(t, "Grid", sections[0].Name)
	require.Equal(t, "Time", sections[1].Name)

	s, ok := ini.Section("Time")
	require.True(t, ok)
	require.Equal(t, []string{"CFL", "tstop"}, s.Keys())

	v, ok := ini.Get("Time", "CFL")
	require.True(t, ok)
	require.Equal(t, "0.4", v)

	// Multi-column values keep their columns.
	require.Equal(t, []string{"0.1", "-1", "single_file"}, ini.Values("Static Grid Output", "dbl"))
	v, ok = ini.Get("Static Grid Output", "dbl")
	require.True(t, ok)
	require.Equal(t, "0.1 -1 single_file", v)

	_, ok = ini.Get("Time", "missing")
	require.False(t, ok)
	_, ok = ini.Get("Missing", "CFL")
	require.False(t, ok)
}

func TestIniString(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pluto.ini", []byte(sampleIni))
	ini, err := LoadIni(path)
	require.NoError(t, err)

	out := ini.String()
	require.Contains(t, out, "[Grid]\n")
	require.Contains(t, out, "[Time]\n")

	// Rendering round-trips through the parser.
	path2 := writeFile(t, t.TempDir(), "pluto.ini", []byte(out))
	ini2, err := LoadIni(path2)
	require.NoError(t, err)
	require.Equal(t, ini.Values("Static Grid Output", "dbl"), ini2.Values("Static Grid Output", "dbl"))
	require.Len(t, ini2.Sections(), 3)
}

func TestLoadIniErrors(t *testing.T) {
	t.Run("key outside section", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "pluto.ini", []byte("CFL 0.4\n"))
		_, err := LoadIni(path)
		require.ErrorIs(t, err, ErrFormat)
	})
	t.Run("key without value", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "pluto.ini", []byte("[Time]\nCFL\n"))
		_, err := LoadIni(path)
		require.ErrorIs(t, err, ErrFormat)
	})
}

func TestLoadDefinitions(t *testing.T) {
	content := `
#define  PHYSICS                        HD
#define  DIMENSIONS                     2
#define  GEOMETRY                       POLAR

/* -- user-defined parameters -- */

#define  MACH                           10.0
`
	path := writeFile(t, t.TempDir(), "definitions.h", []byte(content))
	defs, err := LoadDefinitions(path)
	require.NoError(t, err)

	require.Equal(t, []string{"PHYSICS", "DIMENSIONS", "GEOMETRY", "MACH"}, defs.Keys())
	v, ok := defs.Get("GEOMETRY")
	require.True(t, ok)
	require.Equal(t, "POLAR", v)
	_, ok = defs.Get("COOLING")
	require.False(t, ok)

	out := defs.String()
	require.Contains(t, out, "GEOMETRY = POLAR\n")
}
