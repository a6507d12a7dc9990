// Package pluto provides structured, lazy, cached access to the output of
// PLUTO-style simulations: a fixed structured grid plus named variable
// arrays written as a sequence of numbered frames in one of several binary
// layouts (raw single- or multiple-file, legacy VTK, HDF5).
//
// A Simulation owns the immutable grid geometry and run metadata and hands
// out Frame views by index. Frames load variable arrays lazily on first
// access and cache them until evicted; no variable data is read before it
// is asked for.
package pluto

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Configuration file names expected in a run directory.
const (
	gridFileName = "grid.out"
	iniFileName  = "pluto.ini"
	defsFileName = "definitions.h"
)

// iniOutputDirKey locates the data directory override in pluto.ini.
var iniOutputDirKey = [2]string{"Static Grid Output", "output_dir"}

type simOptions struct {
	format      Format
	coordinates string
	order       IndexOrder
}

// Option configures Open.
type Option func(*simOptions)

// WithFormat requests a specific on-disk format instead of probing.
func WithFormat(f Format) Option {
	return func(o *simOptions) { o.format = f }
}

// WithCoordinates overrides the coordinate system instead of reading it
// from the grid file header.
func WithCoordinates(system string) Option {
	return func(o *simOptions) { o.coordinates = system }
}

// WithIndexOrder selects the indexing convention for variable arrays.
// The default is RowMajor.
func WithIndexOrder(order IndexOrder) Option {
	return func(o *simOptions) { o.order = order }
}

// Simulation is the index over all frames of one simulation run. It owns
// the shared grid geometry and metadata, canonicalizes frame indices, and
// caches Frame objects under an explicit keep policy.
//
// The frame cache and the per-frame variable caches are not safe for
// concurrent mutation; concurrent consumers must hold independent Frame
// instances (see ReduceParallel).
type Simulation struct {
	Path    string // run directory
	DataDir string // resolved data directory
	Format  Format
	Grid    *Grid
	Meta    *Metadata

	frames map[int]*Frame
	ini    *Ini
	defs   *Definitions
}

// Open discovers and indexes a simulation run. The data directory is
// searched in fixed priority order: the run directory itself, its "data"
// subdirectory, and finally the output directory named in pluto.ini. The
// on-disk format is the first of SupportedFormats with a manifest file,
// unless requested explicitly.
//
// Opening reads only the grid file and the manifest; variable data stays
// on disk until a frame is asked for it.
func Open(path string, opts ...Option) (*Simulation, error) {
	var o simOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := &Simulation{Path: path, frames: make(map[int]*Frame)}

	dataDir, err := s.findDataDir()
	if err != nil {
		return nil, err
	}
	s.DataDir = dataDir

	if o.format != "" {
		if !o.format.supported() {
			return nil, fmt.Errorf("%w: format %q", ErrUnsupportedLayout, o.format)
		}
		if _, err := os.Stat(s.manifestPath(o.format)); err != nil {
			return nil, fmt.Errorf("%w: manifest %s not found", ErrUnsupportedLayout, s.manifestPath(o.format))
		}
		s.Format = o.format
	} else {
		for _, f := range SupportedFormats {
			if _, err := os.Stat(s.manifestPath(f)); err == nil {
				s.Format = f
				break
			}
		}
		if s.Format == "" {
			return nil, fmt.Errorf("%w: no manifest for formats %v in %s", ErrUnsupportedLayout, SupportedFormats, s.DataDir)
		}
	}

	s.Meta, err = ParseMetadata(s.DataDir, s.Format)
	if err != nil {
		return nil, err
	}

	s.Grid, err = ParseGrid(filepath.Join(s.DataDir, gridFileName), o.coordinates, o.order)
	if err != nil {
		return nil, err
	}
	if s.Grid.Coordinates() == "" {
		// Compile-time definitions are the geometry fallback of last resort.
		if defs, err := s.Definitions(); err == nil {
			if geom, ok := defs.Get("GEOMETRY"); ok {
				_ = s.Grid.SetCoordinateSystem(strings.ToLower(geom))
			}
		}
	}
	return s, nil
}

// findDataDir resolves the directory holding the grid file and data files.
func (s *Simulation) findDataDir() (string, error) {
	if _, err := os.Stat(filepath.Join(s.Path, gridFileName)); err == nil {
		return s.Path, nil
	}
	if _, err := os.Stat(filepath.Join(s.Path, "data", gridFileName)); err == nil {
		return filepath.Join(s.Path, "data"), nil
	}
	if ini, err := s.Ini(); err == nil {
		if dir, ok := ini.Get(iniOutputDirKey[0], iniOutputDirKey[1]); ok {
			candidate := filepath.Join(s.Path, dir)
			if _, err := os.Stat(filepath.Join(candidate, gridFileName)); err == nil {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w: searched %s", ErrMissingDataDirectory, s.Path)
}

func (s *Simulation) manifestPath(f Format) string {
	return filepath.Join(s.DataDir, string(f)+".out")
}

// Ini returns the runtime configuration, read on first use.
func (s *Simulation) Ini() (*Ini, error) {
	if s.ini == nil {
		ini, err := LoadIni(filepath.Join(s.Path, iniFileName))
		if err != nil {
			return nil, err
		}
		s.ini = ini
	}
	return s.ini, nil
}

// Definitions returns the compile-time configuration, read on first use.
func (s *Simulation) Definitions() (*Definitions, error) {
	if s.defs == nil {
		defs, err := LoadDefinitions(filepath.Join(s.Path, defsFileName))
		if err != nil {
			return nil, err
		}
		s.defs = defs
	}
	return s.defs, nil
}

// Len returns the number of frames.
func (s *Simulation) Len() int { return s.Meta.Frames() }

// ResolveIndex canonicalizes a frame index: negative indices count from the
// end; anything outside [0, Len) fails with ErrIndexOutOfRange.
func (s *Simulation) ResolveIndex(i int) (int, error) {
	n := s.Len()
	resolved := i
	if resolved < 0 {
		resolved += n
	}
	if resolved < 0 || resolved >= n {
		return 0, fmt.Errorf("%w: frame %d of %d", ErrIndexOutOfRange, i, n)
	}
	return resolved, nil
}

// Get returns the frame at index i, constructing and caching it if needed.
// Construction never reads variable data; only Frame.Get does.
func (s *Simulation) Get(i int) (*Frame, error) {
	i, err := s.ResolveIndex(i)
	if err != nil {
		return nil, err
	}
	if fr, ok := s.frames[i]; ok {
		return fr, nil
	}
	fr := newFrame(i, s.Meta, s.Grid, s)
	s.frames[i] = fr
	return fr, nil
}

// Load returns a new frame at index i without touching the frame cache.
// The caller owns the frame and should Close it when done.
func (s *Simulation) Load(i int) (*Frame, error) {
	i, err := s.ResolveIndex(i)
	if err != nil {
		return nil, err
	}
	return newFrame(i, s.Meta, s.Grid, s), nil
}

// Delete evicts the cached frame at index i and releases its arrays.
// Frames obtained via Load are unaffected. Deleting an uncached index is a
// no-op.
func (s *Simulation) Delete(i int) error {
	i, err := s.ResolveIndex(i)
	if err != nil {
		return err
	}
	fr, ok := s.frames[i]
	if !ok {
		return nil
	}
	delete(s.frames, i)
	return fr.Close()
}

// Clear evicts all cached frames and releases their arrays.
func (s *Simulation) Clear() error {
	var firstErr error
	for i, fr := range s.frames {
		delete(s.frames, i)
		if err := fr.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// resolveMeta serves simulation-level names for the Resolve chains: the
// metadata arrays and a handful of run attributes.
func (s *Simulation) resolveMeta(name string) (any, error) {
	switch name {
	case "t":
		return s.Meta.Time, nil
	case "dt":
		return s.Meta.DT(), nil
	case "sim_dt":
		return s.Meta.SimDT, nil
	case "nstep":
		return s.Meta.Step, nil
	case "vars":
		return s.Meta.Vars, nil
	case "format":
		return s.Format, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
}

// Resolve looks a name up at simulation scope: grid quantities first, then
// metadata arrays, then data variables of the last frame.
func (s *Simulation) Resolve(name string) (any, error) {
	if v, err := s.Grid.Var(name); err == nil {
		return v, nil
	}
	if v, err := s.resolveMeta(name); err == nil {
		return v, nil
	}
	fr, err := s.Get(-1)
	if err != nil {
		return nil, err
	}
	if v, err := fr.Get(name); err == nil {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
}

// Info returns a human-readable summary of the run.
func (s *Simulation) Info() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PLUTO simulation at %q\n", s.Path)
	fmt.Fprintf(&b, "Data directory at %q\n", s.DataDir)
	coords := s.Grid.Coordinates()
	if coords == "" {
		coords = "unknown"
	}
	fmt.Fprintf(&b, "%s grid with dimensions %v\n", coords, s.Grid.Dims)
	for i, a := range s.Grid.Axes {
		if len(a.Left) == 0 {
			continue
		}
		fmt.Fprintf(&b, "    x%d: %.2e .. %.2e (Lx%d = %.2e)\n",
			i+1, a.Left[0], a.Right[len(a.Right)-1], i+1, a.Extent())
	}
	fmt.Fprintf(&b, "Available variables: %s\n", strings.Join(s.Meta.Vars, " "))
	fmt.Fprintf(&b, "Format %s: %d frames, last time %g\n", s.Format, s.Len(), s.Meta.Time[s.Len()-1])
	return b.String()
}
