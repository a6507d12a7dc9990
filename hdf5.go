package pluto

import (
	"fmt"
	"path/filepath"

	"github.com/scigolib/hdf5"
)

// hdf5DatasetPath returns the dataset path of a variable within a per-frame
// HDF5 file.
func hdf5DatasetPath(n int, varname string) string {
	return fmt.Sprintf("/Timestep_%d/vars/%s", n, varname)
}

// loadHDF5 reads one variable from the per-frame HDF5 file. The HDF5 layout
// stores datasets in the natural row-major order; a grid configured for
// column-major indexing cannot be served and fails rather than silently
// reinterpreting the data.
func (fr *Frame) loadHDF5(varname string) (*Array, error) {
	if fr.grid.Order() != RowMajor {
		return nil, fmt.Errorf("%w: HDF5 layout requires row-major indexing", ErrUnsupportedLayout)
	}

	path := filepath.Join(fr.meta.DataDir, fmt.Sprintf("data.%04d.%s", fr.N, fr.meta.Format))
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedLayout, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	// Writers differ in where they put the per-frame datasets: grouped under
	// a timestep group, or flat at the root.
	want := hdf5DatasetPath(fr.N, varname)
	flat := "/" + varname
	var ds *hdf5.Dataset
	f.Walk(func(p string, obj hdf5.Object) {
		if p == want || (ds == nil && p == flat) {
			if d, ok := obj.(*hdf5.Dataset); ok {
				ds = d
			}
		}
	})
	if ds == nil {
		return nil, fmt.Errorf("%w: dataset %s not found in %s", ErrUnknownVariable, want, path)
	}

	data, err := ds.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset read failed: %w", err)
	}
	if len(data) != fr.grid.CellCount() {
		return nil, fmt.Errorf("%w: dataset %s has %d elements, grid has %d cells",
			ErrFormat, want, len(data), fr.grid.CellCount())
	}

	shape := fr.grid.DataShape()
	return &Array{
		Shape:   shape,
		Strides: stridesFor(shape, RowMajor),
		Data:    data,
	}, nil
}
