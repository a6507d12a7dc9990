package rawfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestMap(t *testing.T) {
	data := []byte("0123456789abcdef")
	path := writeTemp(t, data)

	reg, err := Map(path, 0, int64(len(data)))
	require.NoError(t, err)
	require.Equal(t, data, reg.Data)
	require.NoError(t, reg.Close())

	// Close is idempotent.
	require.NoError(t, reg.Close())
}

func TestMapOffset(t *testing.T) {
	data := []byte("0123456789abcdef")
	path := writeTemp(t, data)

	// Offsets inside the first page are not page aligned.
	reg, err := Map(path, 5, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("5678"), reg.Data)
	require.NoError(t, reg.Close())
}

func TestMapEmpty(t *testing.T) {
	path := writeTemp(t, []byte("0123"))
	reg, err := Map(path, 2, 0)
	require.NoError(t, err)
	require.Empty(t, reg.Data)
	require.NoError(t, reg.Close())
}

func TestMapErrors(t *testing.T) {
	path := writeTemp(t, []byte("0123456789"))

	_, err := Map(path, 8, 4)
	require.Error(t, err)
	_, err = Map(path, -1, 4)
	require.Error(t, err)
	_, err = Map(filepath.Join(t.TempDir(), "missing"), 0, 4)
	require.Error(t, err)
}
