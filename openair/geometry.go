// openair/geometry.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package openair

import (
	"fmt"
	gomath "math"
	"strconv"
	"strings"

	"github.com/glidernav/airwarn/math"
)

// Circles and arcs are sampled at this angular step.
const stepDegrees = 1

// unitRadii converts a radius in kilometers to angle units along the
// latitude and longitude axes at the current center.
func (s *fileState) unitRadii(km float64) (rLat, rLon float64) {
	kmLat, kmLon := math.UnitScale(s.center)
	return km / kmLat, km / kmLon
}

// addCircle handles DC: a full circle of the given radius in nautical
// miles around the current center.
func (s *fileState) addCircle(radiusNM float64) {
	rLat, rLon := s.unitRadii(radiusNM * math.MileMeters / 1000)

	for i := 0; i < 360; i += stepDegrees {
		phi := math.Radians(float64(i))
		s.points = append(s.points, s.offset(phi, rLat, rLon))
	}
}

func (s *fileState) offset(phi, rLat, rLon float64) math.Point2LL {
	return math.Point2LL{
		Lat: math.Round[int32](gomath.Cos(phi)*rLat + float64(s.center.Lat)),
		Lon: math.Round[int32](gomath.Sin(phi)*rLon + float64(s.center.Lon)),
	}
}

// addArc appends an arc around the current center from angle a1 to a2
// (radians, clockwise from north) in the current direction. rLat and
// rLon are the radius in angle units along each axis.
func (s *fileState) addArc(rLat, rLon, a1, a2 float64) {
	if s.direction > 0 {
		if a1 >= a2 {
			a2 += 2 * gomath.Pi
		}
	} else if a2 >= a1 {
		a1 += 2 * gomath.Pi
	}

	nsteps := math.Abs(int((a2-a1)*180/(stepDegrees*gomath.Pi))) + 2
	step := math.Radians(stepDegrees)
	if s.direction < 0 {
		step = -step
	}

	phi := a1
	for range nsteps - 1 {
		s.points = append(s.points, s.offset(phi, rLat, rLon))
		phi += step
	}
	// The end point is always exact.
	s.points = append(s.points, s.offset(a2, rLat, rLon))
}

// angleArc handles "DA radius, angle1, angle2" with the radius in
// nautical miles and the angles in degrees.
func (s *fileState) angleArc(args string) error {
	fields := strings.Split(args, ",")
	if len(fields) < 3 {
		return fmt.Errorf("%q: expected radius and two angles", args)
	}

	var v [3]float64
	for i := range v {
		var err error
		if v[i], err = strconv.ParseFloat(strings.TrimSpace(fields[i]), 64); err != nil {
			return fmt.Errorf("%q: %w", args, err)
		}
	}

	rLat, rLon := s.unitRadii(v[0] * math.MileMeters / 1000)
	s.addArc(rLat, rLon, math.Radians(v[1]), math.Radians(v[2]))
	return nil
}

// coordinateArc handles "DB coord1, coord2": an arc around the current
// center between two boundary points. The radius is the mean of the
// distances to the two points.
func (s *fileState) coordinateArc(args string) error {
	fields := strings.Split(args, ",")
	if len(fields) < 2 {
		return fmt.Errorf("%q: expected two coordinates", args)
	}

	p1, err := math.ParseCoordinate(fields[0])
	if err != nil {
		return err
	}
	p2, err := math.ParseCoordinate(fields[1])
	if err != nil {
		return err
	}

	km := (math.Distance2LLKm(s.center, p1) + math.Distance2LLKm(s.center, p2)) / 2
	rLat, rLon := s.unitRadii(km)
	s.addArc(rLat, rLon, math.Bearing(s.center, p1), math.Bearing(s.center, p2))
	return nil
}

// variable handles the V X=, V D=, V W= and V Z= directives.
func (s *fileState) variable(args string) error {
	name, value, ok := strings.Cut(args, "=")
	if !ok {
		return fmt.Errorf("%q: missing '='", args)
	}
	name, value = strings.ToUpper(strings.TrimSpace(name)), strings.TrimSpace(value)

	switch name {
	case "X":
		c, err := math.ParseCoordinate(value)
		if err != nil {
			return err
		}
		s.center = c
	case "D":
		switch value {
		case "+":
			s.direction = 1
		case "-":
			s.direction = -1
		default:
			return fmt.Errorf("%q: invalid direction", value)
		}
	case "W":
		w, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%q: %w", value, err)
		}
		s.width = w
	case "Z":
		// Zoom visibility; unused.
	default:
		return fmt.Errorf("%q: unknown variable", name)
	}
	return nil
}
