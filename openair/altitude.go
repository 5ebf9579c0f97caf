// openair/altitude.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package openair

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/glidernav/airwarn/airspace"
	"github.com/glidernav/airwarn/math"
)

var (
	alphaRe   = regexp.MustCompile(`[A-Za-z]+`)
	numericRe = regexp.MustCompile(`[0-9]+`)
)

func referenceKeyword(s string) airspace.Reference {
	switch s {
	case "AMSL", "MSL", "ALT":
		return airspace.MSL
	case "GND", "SFC", "ASFC", "AGL", "GROUND":
		return airspace.GND
	case "FL":
		return airspace.FlightLevel
	case "STD":
		return airspace.Standard
	}
	if strings.HasPrefix(s, "UNL") {
		return airspace.Unlimited
	}
	return airspace.NotSet
}

// ParseAltitude parses an AL or AH field such as "FL100", "2000ft AMSL",
// "1000M MSL", "GND" or "UNLIM". Words are examined before numbers. The
// first reference keyword wins; any later one is reported in warnings and
// ignored. Metric values are converted to feet.
func ParseAltitude(s string) (limit airspace.Limit, warnings []string) {
	tokens := append(alphaRe.FindAllString(s, -1), numericRe.FindAllString(s, -1)...)

	var feet, meters bool
	for _, tok := range tokens {
		tok = strings.ToUpper(tok)

		if ref := referenceKeyword(tok); ref != airspace.NotSet {
			if limit.Ref == airspace.NotSet {
				limit.Ref = ref
			} else {
				warnings = append(warnings, "\""+s+"\" contains more than one elevation type; only the first one is used")
			}
			continue
		}

		switch tok {
		case "FT":
			feet = true
		case "M":
			meters = true
		default:
			if v, err := strconv.Atoi(tok); err == nil {
				limit.Value = v
			}
		}
	}

	if feet && limit.Ref == airspace.NotSet {
		limit.Ref = airspace.MSL
	}
	if meters {
		limit.Value = math.Round[int](float64(limit.Value) / math.FeetToMeters)
	}
	if limit.Value == 0 && limit.Ref == airspace.NotSet {
		// Some national data sets give bare zeros for the surface.
		limit.Ref = airspace.GND
	}
	return limit, warnings
}
