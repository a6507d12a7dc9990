package pluto

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Format identifies a supported on-disk output format.
type Format string

// Supported output formats, in probe order.
const (
	FormatDbl   Format = "dbl"
	FormatFlt   Format = "flt"
	FormatVTK   Format = "vtk"
	FormatDblH5 Format = "dbl.h5"
	FormatFltH5 Format = "flt.h5"
)

// SupportedFormats lists the formats in the order they are probed when no
// explicit format is requested.
var SupportedFormats = []Format{FormatDbl, FormatFlt, FormatVTK, FormatDblH5, FormatFltH5}

// ElemSize returns the element byte width of the format: 8 for the double
// precision formats, 4 for everything else.
func (f Format) ElemSize() int {
	if f == FormatDbl || f == FormatDblH5 {
		return 8
	}
	return 4
}

func (f Format) supported() bool {
	for _, s := range SupportedFormats {
		if f == s {
			return true
		}
	}
	return false
}

// FileMode describes how variable data is distributed over files.
type FileMode int

const (
	// SingleFile stores all variables of a frame concatenated in one file.
	SingleFile FileMode = iota
	// MultipleFiles stores one file per variable per frame.
	MultipleFiles
)

func (m FileMode) String() string {
	if m == SingleFile {
		return "single"
	}
	return "multiple"
}

// Metadata holds the parsed per-run manifest of one output format: which
// frames exist, their timestamps, the variable list, and the binary layout
// descriptors needed to locate variable data on disk.
//
// The layout tag, endianness and variable list are taken from the first
// manifest line and trusted to be identical across all lines, which is an
// invariant of the upstream writer.
type Metadata struct {
	Path    string
	DataDir string
	Format  Format

	FileMode  FileMode
	ByteOrder binary.ByteOrder
	ElemSize  int

	Time  []float64 // simulation time per frame
	SimDT []float64 // simulation timestep per frame
	Step  []int     // simulation step count per frame
	Vars  []string  // ordered, deduplicated variable list

	// VTKOffsets maps variable names to the byte offset of their binary
	// payload. Populated for the legacy-VTK layout only.
	VTKOffsets map[string]int64
}

// ParseMetadata reads a "<format>.out" manifest. path may be the manifest
// file itself or the data directory containing it. Each non-empty line is
// one frame record: "index time sim_dt step layout_tag endianness_tag
// var1 [var2 ...]". For the legacy-VTK format the binary headers of the
// first frame's data files are scanned to record per-variable byte offsets.
func ParseMetadata(path string, format Format) (*Metadata, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, string(format)+".out")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest read failed: %w", err)
	}

	m := &Metadata{
		Path:     path,
		DataDir:  filepath.Dir(path),
		Format:   format,
		ElemSize: format.ElemSize(),
	}

	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s: empty manifest", ErrFormat, path)
	}

	// Layout tag, endianness and variable list come from the first line and
	// are authoritative for the whole run.
	first := strings.Fields(lines[0])
	if len(first) < 7 {
		return nil, fmt.Errorf("%w: %s: manifest line needs at least 7 fields, got %d", ErrFormat, path, len(first))
	}
	if first[4] == "single_file" {
		m.FileMode = SingleFile
	} else {
		m.FileMode = MultipleFiles
	}
	if first[5] == "little" {
		m.ByteOrder = binary.LittleEndian
	} else {
		m.ByteOrder = binary.BigEndian
	}
	if format == FormatVTK {
		// Legacy VTK is always big-endian, regardless of the manifest.
		m.ByteOrder = binary.BigEndian
	}
	seen := make(map[string]bool)
	for _, v := range first[6:] {
		if !seen[v] {
			seen[v] = true
			m.Vars = append(m.Vars, v)
		}
	}

	m.Time = make([]float64, len(lines))
	m.SimDT = make([]float64, len(lines))
	m.Step = make([]int, len(lines))
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("%w: %s: frame record %d too short", ErrFormat, path, i)
		}
		if m.Time[i], err = strconv.ParseFloat(fields[1], 64); err != nil {
			return nil, fmt.Errorf("%w: %s: frame record %d: invalid time %q", ErrFormat, path, i, fields[1])
		}
		if m.SimDT[i], err = strconv.ParseFloat(fields[2], 64); err != nil {
			return nil, fmt.Errorf("%w: %s: frame record %d: invalid timestep %q", ErrFormat, path, i, fields[2])
		}
		step, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: frame record %d: invalid step %q", ErrFormat, path, i, fields[3])
		}
		m.Step[i] = int(step)
	}

	if format == FormatVTK {
		if err := m.scanVTK(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// scanVTK records per-variable byte offsets from the first frame's VTK
// headers. In single-file mode one shared file holds all variables; in
// multiple-file mode each variable has its own file.
func (m *Metadata) scanVTK() error {
	if m.FileMode == SingleFile {
		offsets, err := scanVTKOffsets(filepath.Join(m.DataDir, "data.0000.vtk"))
		if err != nil {
			return err
		}
		m.VTKOffsets = offsets
		return nil
	}
	m.VTKOffsets = make(map[string]int64)
	for _, v := range m.Vars {
		offsets, err := scanVTKOffsets(filepath.Join(m.DataDir, v+".0000.vtk"))
		if err != nil {
			return err
		}
		for name, off := range offsets {
			m.VTKOffsets[name] = off
		}
	}
	return nil
}

// Frames returns the number of frames in the run.
func (m *Metadata) Frames() int { return len(m.Time) }

// DT returns the time differences between consecutive frames, one element
// fewer than the frame count.
func (m *Metadata) DT() []float64 {
	if len(m.Time) < 2 {
		return nil
	}
	dt := make([]float64, len(m.Time)-1)
	for i := range dt {
		dt[i] = m.Time[i+1] - m.Time[i]
	}
	return dt
}

// HasVar reports whether a canonical variable name is part of the run.
func (m *Metadata) HasVar(name string) bool {
	return m.varIndex(name) >= 0
}

func (m *Metadata) varIndex(name string) int {
	for i, v := range m.Vars {
		if v == name {
			return i
		}
	}
	return -1
}
