// config/config_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/glidernav/airwarn/airspace"
	"github.com/glidernav/airwarn/conflict"
	"github.com/glidernav/airwarn/projection"
)

func writeConfig(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(c.AirspaceFiles, []string{"All"}) || len(c.MapDirs) != 0 {
		t.Errorf("files %v, dirs %v", c.AirspaceFiles, c.MapDirs)
	}
	if c.Log.Level != "info" || c.MemoryCacheSize != 64 {
		t.Errorf("log level %q, cache size %d", c.Log.Level, c.MemoryCacheSize)
	}

	expect := projection.Descriptor{Kind: projection.KindLambert, Parallel1: 48, Parallel2: 54, OriginLat: 51, OriginLon: 10}
	if d := c.Descriptor(); !d.Equal(expect) {
		t.Errorf("projection %s", d)
	}
	if _, err := c.NewProjection(); err != nil {
		t.Error(err)
	}

	s := c.ConflictSettings()
	if !s.WarningEnabled || !s.PopupEnabled || !s.FillingEnabled {
		t.Errorf("warnings not enabled by default: %+v", s)
	}
	if s.SuppressTime != 5*time.Minute || s.DisplayTime != 10*time.Second {
		t.Errorf("durations %s, %s", s.SuppressTime, s.DisplayTime)
	}
	if s.Distances.HorClose != 2000 || s.Distances.VerAboveVeryClose != 100 {
		t.Errorf("distances %+v", s.Distances)
	}
	if s.LateralOpacity != (conflict.Opacity{0, 10, 20, 30}) || len(s.Disabled) != 0 {
		t.Errorf("opacity %v, disabled %v", s.LateralOpacity, s.Disabled)
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name, contents string
	}{
		{"airwarn.yaml", `
map_dirs: [/data/maps, /media/maps]
airspace_files: [germany.txt]
categories:
  Danger:
    warn: false
  AirC:
    draw: true
warnings:
  popups: false
  suppress_minutes: 2
distances:
  hor_close: 3000
opacity:
  lateral: [5, 15, 25, 35]
projection:
  kind: cylindrical
  parallel1: 45
log:
  level: debug
`},
		{"airwarn.json", `{
  "map_dirs": ["/data/maps", "/media/maps"],
  "airspace_files": ["germany.txt"],
  "categories": {"Danger": {"warn": false}, "AirC": {"draw": true}},
  "warnings": {"popups": false, "suppress_minutes": 2},
  "distances": {"hor_close": 3000},
  "opacity": {"lateral": [5, 15, 25, 35]},
  "projection": {"kind": "cylindrical", "parallel1": 45},
  "log": {"level": "debug"}
}`},
		{"airwarn.toml", `
map_dirs = ["/data/maps", "/media/maps"]
airspace_files = ["germany.txt"]

[categories.Danger]
warn = false

[categories.AirC]
draw = true

[warnings]
popups = false
suppress_minutes = 2

[distances]
hor_close = 3000

[opacity]
lateral = [5, 15, 25, 35]

[projection]
kind = "cylindrical"
parallel1 = 45

[log]
level = "debug"
`},
	}

	for _, test := range tests {
		c, err := Load(writeConfig(t, test.name, test.contents))
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}

		if !slices.Equal(c.MapDirs, []string{"/data/maps", "/media/maps"}) ||
			!slices.Equal(c.AirspaceFiles, []string{"germany.txt"}) {
			t.Errorf("%s: dirs %v, files %v", test.name, c.MapDirs, c.AirspaceFiles)
		}
		if c.Log.Level != "debug" {
			t.Errorf("%s: log level %q", test.name, c.Log.Level)
		}
		if d := c.Descriptor(); d != (projection.Descriptor{Kind: projection.KindCylindrical, Parallel1: 45}) {
			t.Errorf("%s: projection %s", test.name, d)
		}

		s := c.ConflictSettings()
		if s.PopupEnabled || !s.WarningEnabled {
			t.Errorf("%s: popups %v, warnings %v", test.name, s.PopupEnabled, s.WarningEnabled)
		}
		if s.SuppressTime != 2*time.Minute || s.DisplayTime != 10*time.Second {
			t.Errorf("%s: durations %s, %s", test.name, s.SuppressTime, s.DisplayTime)
		}
		// Unset distances keep their defaults.
		if s.Distances.HorClose != 3000 || s.Distances.HorVeryClose != 1000 {
			t.Errorf("%s: distances %+v", test.name, s.Distances)
		}
		if s.LateralOpacity != (conflict.Opacity{5, 15, 25, 35}) || s.VerticalOpacity != (conflict.Opacity{0, 30, 50, 70}) {
			t.Errorf("%s: opacity %v %v", test.name, s.LateralOpacity, s.VerticalOpacity)
		}
		if !s.Disabled[airspace.Danger] || s.Disabled[airspace.ClassC] || len(s.Disabled) != 1 {
			t.Errorf("%s: disabled %v", test.name, s.Disabled)
		}
	}
}

func TestEnvironment(t *testing.T) {
	t.Setenv("AIRWARN_LOG_LEVEL", "warn")
	t.Setenv("AIRWARN_WARNINGS_DISPLAY_SECONDS", "30")
	t.Setenv("AIRWARN_PROJECTION_KIND", "cylindrical")

	path := writeConfig(t, "airwarn.yaml", "log:\n  level: debug\nwarnings:\n  display_seconds: 20\n")
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Log.Level != "warn" || c.Warnings.DisplaySeconds != 30 || c.Projection.Kind != "cylindrical" {
		t.Errorf("environment not applied: %+v", c)
	}
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name, contents string
	}{
		{"log level", "log:\n  level: verbose\n"},
		{"negative distance", "distances:\n  hor_very_close: -1\n"},
		{"margins swapped", "distances:\n  hor_close: 500\n  hor_very_close: 1000\n"},
		{"opacity count", "opacity:\n  lateral: [0, 10, 20]\n"},
		{"opacity range", "opacity:\n  vertical: [0, 10, 20, 120]\n"},
		{"unknown category", "categories:\n  Bogus:\n    warn: false\n"},
		{"projection kind", "projection:\n  kind: mercator\n"},
		{"parallel", "projection:\n  parallel1: 95\n"},
		{"symmetric parallels", "projection:\n  parallel1: 30\n  parallel2: -30\n"},
		{"suppress time", "warnings:\n  suppress_minutes: -5\n"},
		{"empty map dir", "map_dirs: ['']\n"},
	}
	for _, test := range tests {
		_, err := Load(writeConfig(t, "airwarn.yaml", test.contents))
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: got %v, expected ErrInvalid", test.name, err)
		}
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("missing file: expected an error")
	}
}

func TestWatch(t *testing.T) {
	path := writeConfig(t, "airwarn.yaml", "warnings:\n  display_seconds: 20\n")

	type change struct {
		c   *Config
		err error
	}
	changes := make(chan change, 16)
	if err := Watch(path, func(c *Config, err error) { changes <- change{c, err} }); err != nil {
		t.Fatal(err)
	}

	replace := func(contents string) {
		tmp := filepath.Join(filepath.Dir(path), "next.yaml")
		if err := os.WriteFile(tmp, []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Rename(tmp, path); err != nil {
			t.Fatal(err)
		}
	}
	await := func(done func(change) bool) {
		timeout := time.After(10 * time.Second)
		for {
			select {
			case ch := <-changes:
				if done(ch) {
					return
				}
			case <-timeout:
				t.Fatal("timed out waiting for a configuration change")
			}
		}
	}

	replace("warnings:\n  display_seconds: 30\n")
	await(func(ch change) bool {
		return ch.err == nil && ch.c.Warnings.DisplaySeconds == 30
	})

	replace("log:\n  level: verbose\n")
	await(func(ch change) bool {
		return errors.Is(ch.err, ErrInvalid)
	})

	if err := Watch("", func(*Config, error) {}); err == nil {
		t.Errorf("expected an error watching without a file")
	}
}
