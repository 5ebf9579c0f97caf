// math/math_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"errors"
	gomath "math"
	"testing"
)

func TestParseAngle(t *testing.T) {
	tests := []struct {
		str   string
		value int32
		dir   byte
	}{
		{"50:11:31.1504N", 30115192, 'N'},
		{"017:42:38.5171E", 10626420, 'E'},
		{"50.5N", 50.5 * UnitsPerDegree, 'N'},
		{"50:30N", 50.5 * UnitsPerDegree, 'N'},
		{"50:30S", -50.5 * UnitsPerDegree, 'S'},
		{"8:15:00W", -8.25 * UnitsPerDegree, 'W'},
		{" 12:00:00.0 e", 12 * UnitsPerDegree, 'E'},
	}

	for _, test := range tests {
		v, dir, err := ParseAngle(test.str)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", test.str, err)
			continue
		}
		if v != test.value {
			t.Errorf("%q: got %d, expected %d", test.str, v, test.value)
		}
		if dir != test.dir {
			t.Errorf("%q: got direction %c, expected %c", test.str, dir, test.dir)
		}
	}

	for _, invalid := range []string{
		"",
		"50:11:31.1504X",
		"50:11:31.1504",
		"aa:11:31N",
		"50:bb:31N",
		"50:11:ccN",
		"1:2:3:4N",
		"4000:00:00N",
		"181E",
		"NaNN",
		"InfE",
		"-InfW",
	} {
		if _, _, err := ParseAngle(invalid); err == nil {
			t.Errorf("%q: expected error", invalid)
		} else if !errors.Is(err, ErrMalformedCoordinate) {
			t.Errorf("%q: expected ErrMalformedCoordinate, got %v", invalid, err)
		}
	}
}

func TestParseCoordinate(t *testing.T) {
	p, err := ParseCoordinate("50:11:31.1504N 017:42:38.5171E")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Lat != 30115192 || p.Lon != 10626420 {
		t.Errorf("got %+v", p)
	}

	lat, lon := p.Degrees()
	if gomath.Abs(lat-50.1920) > 1e-3 || gomath.Abs(lon-17.7107) > 1e-3 {
		t.Errorf("got %f,%f degrees", lat, lon)
	}

	p, err = ParseCoordinate("33:00:00S 070:30:00W")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Lat != -33*UnitsPerDegree || p.Lon != -70.5*UnitsPerDegree {
		t.Errorf("got %+v", p)
	}

	for _, invalid := range []string{"50:11:31 17:42:38", "50:11:31N", "95:00:00N 10:00:00E",
		"4000:00:00N 010:00:00E", "50:00:00N 4000:00:00E"} {
		if _, err := ParseCoordinate(invalid); err == nil {
			t.Errorf("%q: expected error", invalid)
		}
	}

	if s := p.DMSString(); s != "33:00:00.0S 070:30:00.0W" {
		t.Errorf("got DMS %q", s)
	}
	p, _ = ParseCoordinate("50:11:31.1504N 017:42:38.5171E")
	if s := p.DMSString(); s != "50:11:31.2N 017:42:38.5E" {
		t.Errorf("got DMS %q", s)
	}

	for _, p := range []Point2LL{{Lat: gomath.MinInt32}, {Lon: gomath.MinInt32}, {Lat: MaxLatitude + 1}} {
		if p.Valid() {
			t.Errorf("%+v: expected invalid", p)
		}
	}
}

func TestDistanceAndBearing(t *testing.T) {
	center := FromDegrees(50, 10)

	// One arc minute of latitude is one nautical mile on this sphere.
	d := Distance2LLKm(center, Point2LL{Lat: center.Lat + UnitsPerMinute, Lon: center.Lon})
	if gomath.Abs(d*1000-MileMeters) > 0.01 {
		t.Errorf("got %f km for one minute of latitude, expected %f", d, MileMeters/1000)
	}

	tests := []struct {
		name    string
		to      Point2LL
		bearing float64
	}{
		{"north", Point2LL{center.Lat + 6000, center.Lon}, 0},
		{"east", Point2LL{center.Lat, center.Lon + 6000}, 90},
		{"south", Point2LL{center.Lat - 6000, center.Lon}, 180},
		{"west", Point2LL{center.Lat, center.Lon - 6000}, 270},
	}
	for _, test := range tests {
		b := Degrees(Bearing(center, test.to))
		if gomath.Abs(b-test.bearing) > 1e-6 {
			t.Errorf("%s: got bearing %f, expected %f", test.name, b, test.bearing)
		}
	}

	// Northeast, with longitude units shrunk by cos(latitude).
	ne := Point2LL{center.Lat + 6000, center.Lon + int32(6000/gomath.Cos(Radians(50)))}
	if b := Degrees(Bearing(center, ne)); gomath.Abs(b-45) > 0.1 {
		t.Errorf("northeast: got bearing %f", b)
	}

	latKm, lonKm := UnitScale(center)
	if ratio := lonKm / latKm; gomath.Abs(ratio-gomath.Cos(Radians(50))) > 1e-3 {
		t.Errorf("longitude/latitude scale ratio %f, expected cos(50)", ratio)
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []Point2i{{0, 0}, {100, 0}, {100, 100}, {0, 100}}

	tests := []struct {
		p      Point2i
		inside bool
		dist   float64
	}{
		{Point2i{50, 50}, true, 50},
		{Point2i{150, 50}, false, 50},
		{Point2i{-30, -40}, false, 50},
		{Point2i{50, 110}, false, 10},
	}
	for _, test := range tests {
		if in := PointInPolygon(test.p, square); in != test.inside {
			t.Errorf("%v: got inside %v, expected %v", test.p, in, test.inside)
		}
		if d := PointPolygonDistance(test.p, square); gomath.Abs(d-test.dist) > 1e-9 {
			t.Errorf("%v: got distance %f, expected %f", test.p, d, test.dist)
		}
	}

	// Degenerate two point "polygons" never contain anything but still
	// have a distance.
	line := []Point2i{{0, 0}, {100, 0}}
	if PointInPolygon(Point2i{50, 0}, line) {
		t.Errorf("degenerate polygon should not contain points")
	}
	if d := PointPolygonDistance(Point2i{50, 20}, line); d != 20 {
		t.Errorf("got %f, expected 20", d)
	}
}

func TestExtent2D(t *testing.T) {
	e := Extent2DFromPoints([]Point2i{{10, 20}, {-5, 40}, {30, 0}})
	if e.P0 != (Point2i{-5, 0}) || e.P1 != (Point2i{30, 40}) {
		t.Errorf("got extent %+v", e)
	}
	if !e.Inside(Point2i{0, 0}) || e.Inside(Point2i{31, 0}) {
		t.Errorf("Inside mismatch")
	}
	x := e.Expand(10)
	if !x.Inside(Point2i{40, 50}) || x.Inside(Point2i{41, 50}) {
		t.Errorf("Expand mismatch: %+v", x)
	}
	if !EmptyExtent2D().IsEmpty() || !EmptyExtent2D().Expand(5).IsEmpty() {
		t.Errorf("empty extent should stay empty")
	}
}
