// openair/mapping.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package openair

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/glidernav/airwarn/airspace"
	"github.com/glidernav/airwarn/log"

	"github.com/iancoleman/orderedmap"
)

// MappingSuffix is appended to a source file's base name to find its
// class-code override file.
const MappingSuffix = "_mappings.conf"

var (
	ErrUnmappedClass  = errors.New("class code not mapped to a category")
	ErrInvalidMapping = errors.New("class code mapped to an unknown category")
)

// defaultAliases maps OpenAir AC class codes to canonical category names.
var defaultAliases = [][2]string{
	{"A", "AirA"},
	{"B", "AirB"},
	{"C", "AirC"},
	{"D", "AirD"},
	{"E", "AirE"},
	{"F", "AirF"},
	{"GP", "Restricted"},
	{"R", "Restricted"},
	{"P", "Prohibited"},
	{"TRA", "Restricted"},
	{"Q", "Danger"},
	{"CTR", "ControlD"},
	{"TMZ", "Tmz"},
	{"W", "WaveWindow"},
	{"GSEC", "GliderSector"},
}

// Mapping is the alias table from OpenAir class codes to canonical
// category names. Keys keep their insertion order so that the table can
// be listed the way it was written.
type Mapping struct {
	aliases *orderedmap.OrderedMap
}

// DefaultMapping returns the built-in alias table.
func DefaultMapping() *Mapping {
	m := &Mapping{aliases: orderedmap.New()}
	for _, a := range defaultAliases {
		m.aliases.Set(a[0], a[1])
	}
	return m
}

// MappingPath returns the path of the override file for the given source
// file, e.g. "dir/germany_mappings.conf" for "dir/germany.txt".
func MappingPath(sourcePath string) string {
	base := filepath.Base(sourcePath)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return filepath.Join(filepath.Dir(sourcePath), base+MappingSuffix)
}

// LoadMapping returns the default alias table updated with the overrides
// in the file at path. A missing file is not an error.
func LoadMapping(path string, lg *log.Logger) (*Mapping, error) {
	m := DefaultMapping()

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	} else if err != nil {
		return m, err
	}
	defer f.Close()

	lg.Debugf("%s: parsing mapping file", path)
	if err := m.Read(f, lg); err != nil {
		return m, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Read applies KEY=VALUE overrides from r. Comment lines starting with
// '*' or '#', empty lines and lines without a key are ignored; later
// entries replace earlier ones.
func (m *Mapping) Read(r io.Reader, lg *log.Logger) error {
	sc := bufio.NewScanner(latin9Reader(r))
	for sc.Scan() {
		line := simplify(sc.Text())
		if line == "" || line[0] == '*' || line[0] == '#' {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		lg.Debugf("added %q => %q to mappings", key, value)
		m.Set(key, value)
	}
	return sc.Err()
}

// Set maps the class code to the canonical category name, replacing any
// existing alias for it.
func (m *Mapping) Set(code, canonical string) {
	m.aliases.Delete(code)
	m.aliases.Set(code, canonical)
}

// Alias returns the canonical name that code maps to.
func (m *Mapping) Alias(code string) (string, bool) {
	v, ok := m.aliases.Get(code)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Codes returns the class codes in the order they were defined.
func (m *Mapping) Codes() []string {
	return m.aliases.Keys()
}

// Category resolves a class code through the alias table to a category.
func (m *Mapping) Category(code string) (airspace.Category, error) {
	canonical, ok := m.Alias(code)
	if !ok {
		return airspace.CategoryUnknown, fmt.Errorf("%q: %w", code, ErrUnmappedClass)
	}
	c, ok := airspace.CategoryFromCanonical(canonical)
	if !ok {
		return airspace.CategoryUnknown, fmt.Errorf("%q => %q: %w", code, canonical, ErrInvalidMapping)
	}
	return c, nil
}
