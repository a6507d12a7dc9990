package pluto

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/scigolib/pluto/internal/rawfile"
)

// Frame is one numbered output snapshot. It resolves variable names through
// the coordinate alias tables, lazily loads variable arrays from disk, and
// caches them until they are evicted. Metadata and grid are shared with the
// owning Simulation and never mutated.
type Frame struct {
	N     int     // frame index
	Time  float64 // simulation time at this frame
	SimDT float64 // simulation timestep at this frame
	Step  int     // simulation step count at this frame

	meta   *Metadata
	grid   *Grid
	sim    *Simulation // optional, for Resolve fallback
	loaded map[string]*Array
}

func newFrame(n int, meta *Metadata, grid *Grid, sim *Simulation) *Frame {
	return &Frame{
		N:      n,
		Time:   meta.Time[n],
		SimDT:  meta.SimDT[n],
		Step:   meta.Step[n],
		meta:   meta,
		grid:   grid,
		sim:    sim,
		loaded: make(map[string]*Array),
	}
}

// Grid returns the shared grid geometry.
func (fr *Frame) Grid() *Grid { return fr.grid }

// Metadata returns the shared run metadata.
func (fr *Frame) Metadata() *Metadata { return fr.meta }

// canonicalVar resolves a coordinate-system dependent vector component alias
// to its canonical storage name. Names that are not known aliases pass
// through unchanged.
func (fr *Frame) canonicalVar(name string) string {
	if sys := fr.grid.Coordinates(); sys != "" {
		if m, err := VectorComponentMap(sys); err == nil {
			if canon, ok := m[name]; ok {
				return canon
			}
		}
	}
	return name
}

// Get returns the array for a canonical or aliased variable name, loading
// it from disk on first access. The returned array is the cached backing
// itself; callers that need isolation must copy it explicitly.
func (fr *Frame) Get(name string) (*Array, error) {
	canon := fr.canonicalVar(name)
	if a, ok := fr.loaded[canon]; ok {
		return a, nil
	}
	if !fr.meta.HasVar(canon) {
		return nil, fmt.Errorf("%w: %q is not a data variable", ErrUnknownVariable, name)
	}
	a, err := fr.load(canon)
	if err != nil {
		return nil, fmt.Errorf("frame %d, variable %q: %w", fr.N, canon, err)
	}
	fr.loaded[canon] = a
	return a, nil
}

// Evict removes one cached array and releases its backing. Evicting a valid
// variable that is not cached is a no-op; a name that is not a variable at
// all fails with ErrUnknownVariable. Other cached variables are unaffected.
func (fr *Frame) Evict(name string) error {
	canon := fr.canonicalVar(name)
	if a, ok := fr.loaded[canon]; ok {
		delete(fr.loaded, canon)
		return a.release()
	}
	if !fr.meta.HasVar(canon) {
		return fmt.Errorf("%w: %q is not a data variable", ErrUnknownVariable, name)
	}
	return nil
}

// Close evicts all cached arrays and releases their backings. The frame
// stays usable; subsequent Get calls re-read from disk.
func (fr *Frame) Close() error {
	var errs []error
	for name, a := range fr.loaded {
		delete(fr.loaded, name)
		if err := a.release(); err != nil {
			errs = append(errs, fmt.Errorf("variable %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Loaded returns the canonical names of the currently cached arrays,
// sorted.
func (fr *Frame) Loaded() []string {
	names := make([]string, 0, len(fr.loaded))
	for name := range fr.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// load materializes one variable array, computing the layout-specific file
// path and byte offset.
func (fr *Frame) load(varname string) (*Array, error) {
	switch fr.meta.Format {
	case FormatDbl, FormatFlt:
		var filename string
		var offset int64
		if fr.meta.FileMode == SingleFile {
			filename = fmt.Sprintf("data.%04d.%s", fr.N, fr.meta.Format)
			offset = int64(fr.meta.ElemSize) * int64(fr.grid.CellCount()) * int64(fr.meta.varIndex(varname))
		} else {
			filename = fmt.Sprintf("%s.%04d.%s", varname, fr.N, fr.meta.Format)
		}
		return fr.loadBinary(filepath.Join(fr.meta.DataDir, filename), offset)

	case FormatVTK:
		offset, ok := fr.meta.VTKOffsets[varname]
		if !ok {
			return nil, fmt.Errorf("%w: no VTK offset recorded for %q", ErrFormat, varname)
		}
		var filename string
		if fr.meta.FileMode == SingleFile {
			filename = fmt.Sprintf("data.%04d.vtk", fr.N)
		} else {
			filename = fmt.Sprintf("%s.%04d.vtk", varname, fr.N)
		}
		return fr.loadBinary(filepath.Join(fr.meta.DataDir, filename), offset)

	case FormatDblH5, FormatFltH5:
		return fr.loadHDF5(varname)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedLayout, fr.meta.Format)
}

// loadBinary maps the variable's byte range and decodes it to the grid's
// data shape. If the decode can alias the mapping, the mapping stays open
// until the array is evicted; otherwise it is released immediately.
func (fr *Frame) loadBinary(path string, offset int64) (*Array, error) {
	count := fr.grid.CellCount()
	reg, err := rawfile.Map(path, offset, int64(count*fr.meta.ElemSize))
	if err != nil {
		return nil, err
	}

	data, aliased := decodeFloats(reg.Data, count, fr.meta.ElemSize, fr.meta.ByteOrder)
	shape := fr.grid.DataShape()
	arr := &Array{
		Shape:   shape,
		Strides: stridesFor(shape, fr.grid.Order()),
		Data:    data,
	}
	if aliased {
		arr.region = reg
	} else if err := reg.Close(); err != nil {
		return nil, err
	}
	return arr, nil
}

// Resolve looks a name up through the frame's full resolution chain, in
// order: data variables (canonical or aliased), grid quantities, the
// frame's own scalars (n, t, sim_dt, nstep), and finally the owning
// simulation's metadata arrays. This is the named-attribute access surface
// consumed by rendering code.
func (fr *Frame) Resolve(name string) (any, error) {
	if canon := fr.canonicalVar(name); fr.meta.HasVar(canon) {
		return fr.Get(canon)
	}
	if v, err := fr.grid.Var(name); err == nil {
		return v, nil
	}
	switch name {
	case "n":
		return fr.N, nil
	case "t":
		return fr.Time, nil
	case "sim_dt":
		return fr.SimDT, nil
	case "nstep":
		return fr.Step, nil
	}
	if fr.sim != nil {
		if v, err := fr.sim.resolveMeta(name); err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
}
