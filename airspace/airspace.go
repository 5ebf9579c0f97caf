// airspace/airspace.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package airspace defines airspace volumes and classifies an aircraft's
// altitude and position against them.
package airspace

import (
	"fmt"

	"github.com/glidernav/airwarn/math"
)

// UnlimitedMeters is the normalized height of an unlimited vertical
// limit.
const UnlimitedMeters = 99999

// Airspace is a single airspace volume: a Record with its vertical limits
// normalized to meters.
type Airspace struct {
	Record

	LowerMeters float64
	UpperMeters float64

	// LastVerticalConflict is the result of the most recent call to
	// Classify.
	LastVerticalConflict ConflictType

	info string
}

func New(r Record) *Airspace {
	a := &Airspace{
		Record:      r,
		LowerMeters: referenceToMeters(r.Lower.Value, r.Lower.Ref),
		UpperMeters: referenceToMeters(r.Upper.Value, r.Upper.Ref),
	}
	a.info = a.TypeName() + " " + a.Name + "\n" + limitText(a.Lower, a.LowerMeters, false) +
		" / " + limitText(a.Upper, a.UpperMeters, true)
	return a
}

// referenceToMeters converts a limit value to meters above its reference.
func referenceToMeters(value int, ref Reference) float64 {
	switch ref {
	case GND, MSL, Standard:
		return float64(value) * math.FeetToMeters
	case FlightLevel:
		return float64(value) * 100 * math.FeetToMeters
	case Unlimited:
		return UnlimitedMeters
	default:
		return 0
	}
}

type bound int

const (
	lowerBound bound = iota
	upperBound
)

// selectAltitude returns the aircraft altitude to compare against a limit
// with the given reference. Ground-referenced altitudes are adjusted by
// the ground error margin toward the limit. ok is false if no comparison
// is possible; this is the case for unlimited lower limits.
func selectAltitude(ref Reference, b bound, alts AltitudeCollection, limitMeters float64) (alt float64, ok bool) {
	switch ref {
	case MSL:
		return alts.GPS, true
	case GND:
		if b == lowerBound {
			if limitMeters == 0 {
				// Always above the ground.
				return 1, true
			}
			return alts.Ground + alts.GroundError, true
		}
		return alts.Ground - alts.GroundError, true
	case FlightLevel, Standard:
		return alts.Standard, true
	case Unlimited:
		if b == lowerBound {
			return 0, false
		}
		return limitMeters - 1, true
	default:
		if b == upperBound {
			return 100000, true
		}
		return 0, true
	}
}

// Classify returns the vertical conflict of the given altitudes with the
// airspace, ignoring the lateral position. The result is also stored in
// LastVerticalConflict.
func (a *Airspace) Classify(alts AltitudeCollection, dist WarningDistance) ConflictType {
	a.LastVerticalConflict = a.classify(alts, dist)
	return a.LastVerticalConflict
}

func (a *Airspace) classify(alts AltitudeCollection, dist WarningDistance) ConflictType {
	lower, ok := selectAltitude(a.Lower.Ref, lowerBound, alts, a.LowerMeters)
	if !ok {
		return None
	}
	upper, _ := selectAltitude(a.Upper.Ref, upperBound, alts, a.UpperMeters)

	within := func(below, above float64) bool {
		return lower >= a.LowerMeters-below && upper <= a.UpperMeters+above
	}

	switch {
	case within(0, 0):
		return Inside
	case within(dist.VerBelowVeryClose, dist.VerAboveVeryClose):
		return VeryNear
	case within(dist.VerBelowClose, dist.VerAboveClose):
		return Near
	default:
		return None
	}
}

func (a *Airspace) TypeName() string {
	return a.Category.TypeName()
}

// InfoString returns the type, name and vertical limits as shown to the
// user; it also identifies the airspace in warnings.
func (a *Airspace) InfoString() string {
	return a.info
}

func (a *Airspace) String() string {
	return a.TypeName() + " " + a.Name
}

func limitText(l Limit, meters float64, upper bool) string {
	height := fmt.Sprintf("%.0f m", meters)
	switch l.Ref {
	case MSL:
		if upper && meters >= UnlimitedMeters {
			return "Unlimited"
		}
		return height + " MSL"
	case GND:
		if !upper && meters == 0 {
			return "GND"
		}
		return height + " GND"
	case FlightLevel:
		return fmt.Sprintf("FL %d (%s)", math.Round[int](meters/math.FeetToMeters/100), height)
	case Standard:
		return height + " STD"
	case Unlimited:
		return "Unlimited"
	default:
		return ""
	}
}

// Less orders airspaces by their upper limit and then their lower limit.
func Less(a, b *Airspace) bool {
	if a.UpperMeters != b.UpperMeters {
		return a.UpperMeters < b.UpperMeters
	}
	return a.LowerMeters < b.LowerMeters
}

// Compare is Less in the form expected by slices.SortFunc.
func Compare(a, b *Airspace) int {
	if Less(a, b) {
		return -1
	} else if Less(b, a) {
		return 1
	}
	return 0
}
