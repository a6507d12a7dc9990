package pluto

import (
	"fmt"
	"os"
	"strings"
)

// Ini holds a parsed runtime configuration file (pluto.ini): ordered
// sections of whitespace-separated key/value rows. Values with multiple
// columns are kept as a list.
type Ini struct {
	Path string

	sections []*IniSection
	index    map[string]*IniSection
}

// IniSection is one "[name]" block of an Ini file, with keys in file order.
type IniSection struct {
	Name string

	keys   []string
	values map[string][]string
}

// LoadIni reads and parses a runtime configuration file.
func LoadIni(path string) (*Ini, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ini read failed: %w", err)
	}
	ini := &Ini{Path: path, index: make(map[string]*IniSection)}
	if err := ini.parse(string(raw)); err != nil {
		return nil, err
	}
	return ini, nil
}

func (ini *Ini) parse(text string) error {
	var section *IniSection
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := line[1 : len(line)-1]
			section = &IniSection{Name: name, values: make(map[string][]string)}
			ini.sections = append(ini.sections, section)
			ini.index[name] = section
			continue
		}
		if section == nil {
			return fmt.Errorf("%w: %s: key %q outside any section", ErrFormat, ini.Path, line)
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return fmt.Errorf("%w: %s: key %q has no value", ErrFormat, ini.Path, fields[0])
		}
		key := fields[0]
		if _, ok := section.values[key]; !ok {
			section.keys = append(section.keys, key)
		}
		section.values[key] = fields[1:]
		continue
	}
	return nil
}

// Sections returns the sections in file order.
func (ini *Ini) Sections() []*IniSection { return ini.sections }

// Section returns a section by name.
func (ini *Ini) Section(name string) (*IniSection, bool) {
	s, ok := ini.index[name]
	return s, ok
}

// Get returns the value of a key in a section. Multi-column values are
// joined with single spaces; use Values for the raw columns.
func (ini *Ini) Get(section, key string) (string, bool) {
	vals := ini.Values(section, key)
	if vals == nil {
		return "", false
	}
	return strings.Join(vals, " "), true
}

// Values returns the value columns of a key in a section, or nil.
func (ini *Ini) Values(section, key string) []string {
	s, ok := ini.index[section]
	if !ok {
		return nil
	}
	return s.values[key]
}

// Keys returns the keys of the section in file order.
func (s *IniSection) Keys() []string { return s.keys }

// String renders the section in pluto.ini format with aligned columns.
func (s *IniSection) String() string {
	widths := []int{0}
	for _, key := range s.keys {
		if len(key) > widths[0] {
			widths[0] = len(key)
		}
		for i, v := range s.values[key] {
			for len(widths) <= i+1 {
				widths = append(widths, 0)
			}
			if len(v) > widths[i+1] {
				widths[i+1] = len(v)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n\n", s.Name)
	for _, key := range s.keys {
		fmt.Fprintf(&b, "%-*s", widths[0], key)
		for i, v := range s.values[key] {
			fmt.Fprintf(&b, "  %*s", widths[i+1], v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// String renders the whole file in pluto.ini format.
func (ini *Ini) String() string {
	parts := make([]string, len(ini.sections))
	for i, s := range ini.sections {
		parts[i] = s.String()
	}
	return strings.Join(parts, "\n")
}

// Definitions holds compile-time configuration parsed from a definitions.h
// file: every "#define NAME VALUE" line, in file order.
type Definitions struct {
	Path string

	keys   []string
	values map[string]string
}

// LoadDefinitions reads and parses a compile-time definitions file.
func LoadDefinitions(path string) (*Definitions, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("definitions read failed: %w", err)
	}
	defs := &Definitions{Path: path, values: make(map[string]string)}
	for _, line := range strings.Split(string(raw), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[0] == "#define" {
			if _, ok := defs.values[fields[1]]; !ok {
				defs.keys = append(defs.keys, fields[1])
			}
			defs.values[fields[1]] = fields[2]
		}
	}
	return defs, nil
}

// Get returns the value of a definition.
func (d *Definitions) Get(name string) (string, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Keys returns the definition names in file order.
func (d *Definitions) Keys() []string { return d.keys }

// String renders the definitions as aligned "NAME = VALUE" lines.
func (d *Definitions) String() string {
	width := 0
	for _, key := range d.keys {
		if len(key) > width {
			width = len(key)
		}
	}
	var b strings.Builder
	for _, key := range d.keys {
		fmt.Fprintf(&b, "%*s = %s\n", width, key, d.values[key])
	}
	return b.String()
}
