// math/latlong.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"errors"
	"fmt"
	gomath "math"
	"strconv"
	"strings"
)

///////////////////////////////////////////////////////////////////////////
// Point2LL

// UnitsPerDegree is the fixed-point resolution of angular coordinates:
// one unit is 1/600000 of a degree, i.e. a tenth of an arc second.
const UnitsPerDegree = 600000

// UnitsPerMinute is the number of angle units in one arc minute.
const UnitsPerMinute = UnitsPerDegree / 60

const (
	MaxLatitude  = 90 * UnitsPerDegree
	MaxLongitude = 180 * UnitsPerDegree
)

// EarthRadius is the FAI earth radius in meters.
const EarthRadius = 6371000

// MileMeters is the length of a nautical mile derived from EarthRadius
// (one arc minute of a great circle); OpenAir radii are converted with it.
const MileMeters = 2 * gomath.Pi * EarthRadius / (360 * 60)

const FeetToMeters = 0.3048

var ErrMalformedCoordinate = errors.New("malformed coordinate")

// Point2LL represents a WGS84 position in fixed-point angle units.
// Important: unlike screen coordinates, Lat comes first.
type Point2LL struct {
	Lat, Lon int32
}

func (p Point2LL) Valid() bool {
	return Abs(int64(p.Lat)) <= MaxLatitude && Abs(int64(p.Lon)) <= MaxLongitude
}

// Degrees returns the latitude and longitude as floating-point degrees.
func (p Point2LL) Degrees() (lat, lon float64) {
	return float64(p.Lat) / UnitsPerDegree, float64(p.Lon) / UnitsPerDegree
}

func FromDegrees(lat, lon float64) Point2LL {
	return Point2LL{Lat: Round[int32](lat * UnitsPerDegree), Lon: Round[int32](lon * UnitsPerDegree)}
}

// DMSString returns the position in the colon-separated
// degrees:minutes:seconds form used by OpenAir, e.g.
// 50:11:31.2N 017:42:38.5E
func (p Point2LL) DMSString() string {
	format := func(v int32, width int) string {
		v = Abs(v)
		deg := v / UnitsPerDegree
		v -= deg * UnitsPerDegree
		mins := v / UnitsPerMinute
		v -= mins * UnitsPerMinute
		sec := float64(v) * 60 / UnitsPerMinute
		return fmt.Sprintf("%0*d:%02d:%04.1f", width, deg, mins, sec)
	}

	ns, ew := "N", "E"
	if p.Lat < 0 {
		ns = "S"
	}
	if p.Lon < 0 {
		ew = "W"
	}
	return format(p.Lat, 2) + ns + " " + format(p.Lon, 3) + ew
}

func (p Point2LL) String() string {
	lat, lon := p.Degrees()
	return fmt.Sprintf("(%f, %f)", lat, lon)
}

// ParseAngle parses a single latitude or longitude given as degrees,
// degrees:minutes or degrees:minutes:seconds with a trailing N/S/E/W
// direction letter. Each component may carry a fraction. The returned
// value is negative for S and W; dir reports the direction letter so the
// caller can tell latitudes from longitudes.
func ParseAngle(s string) (value int32, dir byte, err error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, 0, fmt.Errorf("empty angle: %w", ErrMalformedCoordinate)
	}

	dir = s[len(s)-1]
	if dir != 'N' && dir != 'S' && dir != 'E' && dir != 'W' {
		return 0, 0, fmt.Errorf("%q: missing sky direction: %w", s, ErrMalformedCoordinate)
	}

	parts := strings.Split(strings.TrimSpace(s[:len(s)-1]), ":")
	if len(parts) > 3 {
		return 0, 0, fmt.Errorf("%q: unknown format: %w", s, ErrMalformedCoordinate)
	}

	var comp [3]float64
	for i, p := range parts {
		v, perr := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if perr != nil {
			return 0, 0, fmt.Errorf("%q: %v: %w", s, perr, ErrMalformedCoordinate)
		}
		comp[i] = v
	}

	var v float64
	switch len(parts) {
	case 1:
		v = comp[0] * UnitsPerDegree
	case 2:
		v = comp[0]*UnitsPerDegree + comp[1]*UnitsPerMinute
	case 3:
		v = comp[0]*UnitsPerDegree + UnitsPerMinute*(comp[1]+comp[2]/60)
	}

	if gomath.IsNaN(v) || gomath.Abs(v) > MaxLongitude {
		return 0, 0, fmt.Errorf("%q: out of range: %w", s, ErrMalformedCoordinate)
	}

	value = Round[int32](v)
	if dir == 'S' || dir == 'W' {
		value = -value
	}
	return value, dir, nil
}

// ParseCoordinate parses a latitude/longitude pair such as
// "50:11:31.1504N 17:42:38.5171E". The two halves are split after the
// first direction letter; either order is accepted.
func ParseCoordinate(s string) (Point2LL, error) {
	s = strings.ToUpper(s)
	idx := strings.IndexAny(s, "NSEW")
	if idx == -1 {
		return Point2LL{}, fmt.Errorf("%q: missing sky directions: %w", s, ErrMalformedCoordinate)
	}

	var p Point2LL
	for _, part := range []string{s[:idx+1], s[idx+1:]} {
		v, dir, err := ParseAngle(part)
		if err != nil {
			return Point2LL{}, err
		}
		if dir == 'N' || dir == 'S' {
			p.Lat = v
		} else {
			p.Lon = v
		}
	}
	if !p.Valid() {
		return Point2LL{}, fmt.Errorf("%q: out of range: %w", s, ErrMalformedCoordinate)
	}
	return p, nil
}

func toRadians(v float64) float64 {
	return v / UnitsPerDegree * gomath.Pi / 180
}

// DistanceKm returns the great-circle distance in kilometers between two
// positions given in angle units.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	// https://www.movable-type.co.uk/scripts/latlong.html
	phi1, phi2 := toRadians(lat1), toRadians(lat2)
	dphi, dlambda := phi2-phi1, toRadians(lon2-lon1)

	x := Sqr(gomath.Sin(dphi/2)) + gomath.Cos(phi1)*gomath.Cos(phi2)*Sqr(gomath.Sin(dlambda/2))
	c := 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))
	return EarthRadius * c / 1000
}

// Distance2LLKm returns the great-circle distance in kilometers between
// two points.
func Distance2LLKm(a, b Point2LL) float64 {
	return DistanceKm(float64(a.Lat), float64(a.Lon), float64(b.Lat), float64(b.Lon))
}

// Bearing returns the true bearing in radians [0, 2pi) from p1 to p2,
// computed on a locally flat earth from the WGS84 coordinates so that it
// is independent of the map projection.
func Bearing(p1, p2 Point2LL) float64 {
	dlat := float64(p2.Lat - p1.Lat)
	dlon := float64(p2.Lon - p1.Lon)

	latDist := dlat * MileMeters / UnitsPerMinute
	latAvg := (float64(p2.Lat) + float64(p1.Lat)) / 2
	lonDist := dlon * gomath.Cos(toRadians(latAvg)) * MileMeters / UnitsPerMinute

	h := gomath.Hypot(latDist, lonDist)
	if h == 0 {
		return 0
	}
	angle := gomath.Asin(gomath.Abs(lonDist) / h)

	// Move the angle into the right quadrant.
	switch {
	case dlat >= 0 && dlon < 0:
		angle = 2*gomath.Pi - angle
	case dlat <= 0 && dlon <= 0:
		angle = gomath.Pi + angle
	case dlat < 0 && dlon >= 0:
		angle = gomath.Pi - angle
	}
	return angle
}

// UnitScale returns the length in kilometers of one angle unit along the
// latitude and longitude axes at the given point. Longitude units shrink
// with latitude, so the two differ everywhere except at the equator.
func UnitScale(center Point2LL) (kmPerLatUnit, kmPerLonUnit float64) {
	lat, lon := float64(center.Lat), float64(center.Lon)
	kmPerLatUnit = DistanceKm(lat, lon, lat+UnitsPerMinute, lon) / UnitsPerMinute
	kmPerLonUnit = DistanceKm(lat, lon, lat, lon+UnitsPerMinute) / UnitsPerMinute
	return
}
