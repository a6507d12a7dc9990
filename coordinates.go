package pluto

import (
	"fmt"
	"strconv"
	"sync"
)

// Supported coordinate-system names.
const (
	Cartesian   = "cartesian"
	Polar       = "polar"
	Cylindrical = "cylindrical"
	Spherical   = "spherical"
)

// baseCoordinateNames maps coordinate-system dependent axis labels to the
// canonical storage axes x1..x3. All derived name tables start from these.
var baseCoordinateNames = map[string]map[string]string{
	Cartesian:   {"x": "x1", "y": "x2", "z": "x3"},
	Polar:       {"r": "x1", "phi": "x2", "z": "x3"},
	Cylindrical: {"r": "x1", "z": "x2", "x3": "x3"},
	Spherical:   {"r": "x1", "theta": "x2", "phi": "x3"},
}

// displayChars holds symbol overrides used when deriving display names.
var displayChars = map[string]string{
	"theta": `\theta`,
	"rho":   `\rho`,
	"phi":   `\phi`,
	"prs":   "P",
	"enr":   "E_r",
	"Bs":    `B^{(s)}`,
	"fr":    `F^{(r)}`,
}

// nameRegistry memoizes the derived name tables per coordinate system.
// The tables are pure functions of the system name; they are built once on
// first use and shared afterwards. Callers must treat returned maps as
// read-only.
type nameRegistry struct {
	mu   sync.Mutex
	grid map[string]map[string]string
	vars map[string]map[string]string
	disp map[string]map[string]string
}

var coordRegistry = &nameRegistry{
	grid: make(map[string]map[string]string),
	vars: make(map[string]map[string]string),
	disp: make(map[string]map[string]string),
}

func (rg *nameRegistry) get(cache map[string]map[string]string, system string,
	build func(base map[string]string) map[string]string) (map[string]string, error) {
	base, ok := baseCoordinateNames[system]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCoordinateSystem, system)
	}

	rg.mu.Lock()
	defer rg.mu.Unlock()
	if m, ok := cache[system]; ok {
		return m, nil
	}
	m := build(base)
	cache[system] = m
	return m, nil
}

// GridNameMap returns the mapping from coordinate-system dependent grid
// quantity names to canonical storage names. For every axis label the table
// covers the cell center ("r" -> "x1"), the left and right cell interfaces
// ("rl" -> "x1l", "rr" -> "x1r"), the cell width ("dr" -> "dx1") and the
// domain length ("Lr" -> "Lx1").
//
// The returned map is shared and must not be mutated.
func GridNameMap(system string) (map[string]string, error) {
	return coordRegistry.get(coordRegistry.grid, system, func(base map[string]string) map[string]string {
		m := make(map[string]string, 5*len(base))
		for name, num := range base {
			m[name] = num
			m[name+"l"] = num + "l"
			m[name+"r"] = num + "r"
			m["d"+name] = "d" + num
			m["L"+name] = "L" + num
		}
		return m
	})
}

// VectorComponentMap returns the mapping from coordinate-system dependent
// vector component names to canonical storage names: velocity ("vr" -> "vx1"),
// magnetic field ("Br" -> "Bx1", "Brs" -> "Bx1s") and radiative flux.
// Radiative flux components are stored keyed by the numeric axis suffix, so
// "frr" maps to "fr1" rather than "frx1".
//
// The returned map is shared and must not be mutated.
func VectorComponentMap(system string) (map[string]string, error) {
	return coordRegistry.get(coordRegistry.vars, system, func(base map[string]string) map[string]string {
		m := make(map[string]string, 4*len(base))
		for name, num := range base {
			m["v"+name] = "v" + num
			m["B"+name] = "B" + num
			m["B"+name+"s"] = "B" + num + "s"
			m["fr"+name] = "fr" + num[1:]
		}
		return m
	})
}

// DisplayNameMap returns the mapping from canonical or aliased names to
// display symbols (LaTeX math mode), for consumption by rendering code.
// Angle names map to their conventional symbols, and a small fixed set of
// physical quantities (rho, prs, ...) carry hard-coded overrides.
//
// The returned map is shared and must not be mutated.
func DisplayNameMap(system string) (map[string]string, error) {
	return coordRegistry.get(coordRegistry.disp, system, func(base map[string]string) map[string]string {
		m := make(map[string]string)
		for name, num := range base {
			sym, ok := displayChars[name]
			if !ok {
				sym = name
			}
			m[num] = sym
			m[name] = sym
		}

		vm := make(map[string]string)
		for coord, sym := range m {
			vm["v"+coord] = "v_" + sym
			vm["B"+coord] = "B_" + sym
			vm["B"+coord+"s"] = displayChars["Bs"] + "_" + sym
			vm["fr"+coord] = displayChars["fr"] + "_" + sym
		}
		// Radiative flux is stored keyed by the numeric axis suffix.
		for i := 1; i <= 3; i++ {
			n := strconv.Itoa(i)
			if sym, ok := vm["frx"+n]; ok {
				vm["fr"+n] = sym
				delete(vm, "frx"+n)
			}
		}
		for k, v := range vm {
			m[k] = v
		}

		for _, key := range []string{"rho", "prs"} {
			if sym, ok := displayChars[key]; ok {
				m[key] = sym
			} else {
				m[key] = key
			}
		}
		return m
	})
}
