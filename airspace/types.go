// airspace/types.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package airspace

import (
	"fmt"

	"github.com/glidernav/airwarn/projection"
)

///////////////////////////////////////////////////////////////////////////
// Category

// Category is the airspace class or type. The numeric values are stored
// in compiled cache files and must not change.
type Category uint8

const (
	CategoryUnknown Category = iota
	ClassA
	ClassB
	ClassC
	ClassD
	ClassE
	ClassF
	Restricted
	Danger
	Prohibited
	ControlC
	ControlD
	LowFlight
	TMZ
	GliderSector
	WaveWindow
	NumCategories
)

var categoryNames = [NumCategories]struct {
	canonical, display string
}{
	CategoryUnknown: {"Unknown", "unknown"},
	ClassA:          {"AirA", "AS-A"},
	ClassB:          {"AirB", "AS-B"},
	ClassC:          {"AirC", "AS-C"},
	ClassD:          {"AirD", "AS-D"},
	ClassE:          {"AirE", "AS-E"},
	ClassF:          {"AirF", "AS-F"},
	Restricted:      {"Restricted", "Restricted"},
	Danger:          {"Danger", "Danger"},
	Prohibited:      {"Prohibited", "Prohibited"},
	ControlC:        {"ControlC", "CTR-C"},
	ControlD:        {"ControlD", "CTR-D"},
	LowFlight:       {"LowFlight", "Low Flight"},
	TMZ:             {"Tmz", "TMZ"},
	GliderSector:    {"GliderSector", "Glider Sector"},
	WaveWindow:      {"WaveWindow", "Wave Window"},
}

func (c Category) Valid() bool {
	return c > CategoryUnknown && c < NumCategories
}

// CanonicalName returns the internal name that class-code aliases map to,
// e.g. "AirC" or "ControlD".
func (c Category) CanonicalName() string {
	if c >= NumCategories {
		return categoryNames[CategoryUnknown].canonical
	}
	return categoryNames[c].canonical
}

// TypeName returns the short name shown to the user, e.g. "AS-C" or
// "CTR-D".
func (c Category) TypeName() string {
	if c >= NumCategories {
		return categoryNames[CategoryUnknown].display
	}
	return categoryNames[c].display
}

func (c Category) String() string {
	return c.CanonicalName()
}

// CategoryFromCanonical returns the Category with the given canonical
// name.
func CategoryFromCanonical(name string) (Category, bool) {
	for c := ClassA; c < NumCategories; c++ {
		if categoryNames[c].canonical == name {
			return c, true
		}
	}
	return CategoryUnknown, false
}

// AllCategories returns the valid categories in code order.
func AllCategories() []Category {
	cats := make([]Category, 0, NumCategories-1)
	for c := ClassA; c < NumCategories; c++ {
		cats = append(cats, c)
	}
	return cats
}

///////////////////////////////////////////////////////////////////////////
// Reference

// Reference is the datum a vertical limit is measured against.
type Reference uint8

const (
	NotSet Reference = iota
	MSL
	GND
	FlightLevel
	Standard
	Unlimited
	numReferences
)

func (r Reference) Valid() bool {
	return r < numReferences
}

func (r Reference) String() string {
	switch r {
	case NotSet:
		return "NotSet"
	case MSL:
		return "MSL"
	case GND:
		return "GND"
	case FlightLevel:
		return "FL"
	case Standard:
		return "STD"
	case Unlimited:
		return "UNLTD"
	default:
		return fmt.Sprintf("Reference(%d)", r)
	}
}

// Limit is a vertical limit as given in the source data: Value is in feet
// for GND, MSL and Standard references and in hundreds of feet for flight
// levels.
type Limit struct {
	Value int
	Ref   Reference
}

func (l Limit) String() string {
	switch l.Ref {
	case NotSet:
		return "-"
	case Unlimited:
		return "UNLTD"
	case FlightLevel:
		return fmt.Sprintf("FL%d", l.Value)
	default:
		return fmt.Sprintf("%dft %s", l.Value, l.Ref)
	}
}

///////////////////////////////////////////////////////////////////////////
// Record

// Record is a parsed airspace definition with its outline projected into
// map coordinates.
type Record struct {
	Name     string
	Category Category
	Lower    Limit
	Upper    Limit
	Points   []projection.Point
}

///////////////////////////////////////////////////////////////////////////
// Conflicts

// ConflictType is the severity of a proximity classification. Values are
// ordered so that None < Near < VeryNear < Inside.
type ConflictType uint8

const (
	None ConflictType = iota
	Near
	VeryNear
	Inside
)

func (c ConflictType) String() string {
	switch c {
	case None:
		return "None"
	case Near:
		return "Near"
	case VeryNear:
		return "Very Near"
	case Inside:
		return "Inside"
	default:
		return fmt.Sprintf("ConflictType(%d)", c)
	}
}

// MinConflict returns the less severe of the two conflicts. A combined
// lateral and vertical conflict is only as severe as the weaker of the
// two.
func MinConflict(a, b ConflictType) ConflictType {
	return min(a, b)
}

func MaxConflict(a, b ConflictType) ConflictType {
	return max(a, b)
}

// WarningDistance holds the proximity margins, in meters, used to
// classify the aircraft as near or very near an airspace.
type WarningDistance struct {
	HorClose          float64
	HorVeryClose      float64
	VerBelowClose     float64
	VerBelowVeryClose float64
	VerAboveClose     float64
	VerAboveVeryClose float64
}

// AltitudeCollection is the set of aircraft altitudes available at one
// instant, all in meters.
type AltitudeCollection struct {
	GPS         float64 // above mean sea level
	Standard    float64 // pressure altitude
	Ground      float64 // above ground level
	GroundError float64 // uncertainty of Ground
}
