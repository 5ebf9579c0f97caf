// airspace/airspace_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package airspace

import (
	"testing"

	"github.com/glidernav/airwarn/math"
	"github.com/glidernav/airwarn/projection"
)

var testDistance = WarningDistance{
	HorClose:          2000,
	HorVeryClose:      1000,
	VerBelowClose:     200,
	VerBelowVeryClose: 100,
	VerAboveClose:     200,
	VerAboveVeryClose: 100,
}

func TestLimitNormalization(t *testing.T) {
	tests := []struct {
		limit  Limit
		meters float64
	}{
		{Limit{0, GND}, 0},
		{Limit{1000, GND}, 304.8},
		{Limit{2000, MSL}, 609.6},
		{Limit{3000, Standard}, 914.4},
		{Limit{100, FlightLevel}, 3048},
		{Limit{0, Unlimited}, UnlimitedMeters},
		{Limit{5000, NotSet}, 0},
	}
	for _, test := range tests {
		if m := referenceToMeters(test.limit.Value, test.limit.Ref); math.Abs(m-test.meters) > 1e-9 {
			t.Errorf("%v: got %f meters, expected %f", test.limit, m, test.meters)
		}
	}

	a := New(Record{Lower: Limit{0, GND}, Upper: Limit{100, FlightLevel}})
	if a.LowerMeters != 0 {
		t.Errorf("lower: got %f", a.LowerMeters)
	}
	if math.Round[int](a.UpperMeters) != 3048 {
		t.Errorf("upper: got %f, expected 3048", a.UpperMeters)
	}

	// An unlimited ceiling sets the upper limit and leaves the lower one
	// alone.
	a = New(Record{Lower: Limit{1500, MSL}, Upper: Limit{0, Unlimited}})
	if a.UpperMeters != UnlimitedMeters || math.Abs(a.LowerMeters-457.2) > 1e-9 {
		t.Errorf("got %f / %f", a.LowerMeters, a.UpperMeters)
	}
}

func TestClassifyOrdering(t *testing.T) {
	a := New(Record{Name: "High", Category: ClassC, Lower: Limit{0, GND}, Upper: Limit{10000, FlightLevel}})

	alts := AltitudeCollection{Ground: 40, GroundError: 10, Standard: 3000, GPS: 3100}
	if c := a.Classify(alts, testDistance); c != Inside {
		t.Errorf("got %v, expected Inside", c)
	}
	if a.LastVerticalConflict != Inside {
		t.Errorf("LastVerticalConflict %v", a.LastVerticalConflict)
	}

	alts.Standard = a.UpperMeters + testDistance.VerAboveClose + 1
	if c := a.Classify(alts, testDistance); c != None {
		t.Errorf("got %v, expected None", c)
	}
	if a.LastVerticalConflict != None {
		t.Errorf("LastVerticalConflict %v", a.LastVerticalConflict)
	}
}

func TestClassify(t *testing.T) {
	// 1000ft-FL65: 304.8m to 1981.2m.
	mid := New(Record{Lower: Limit{1000, MSL}, Upper: Limit{65, FlightLevel}})

	tests := []struct {
		name     string
		airspace *Airspace
		alts     AltitudeCollection
		expected ConflictType
	}{
		{"inside", mid, AltitudeCollection{GPS: 1000, Standard: 1000}, Inside},
		{"at floor", mid, AltitudeCollection{GPS: 304.8, Standard: 304.8}, Inside},
		{"very near below", mid, AltitudeCollection{GPS: 250, Standard: 250}, VeryNear},
		{"near below", mid, AltitudeCollection{GPS: 150, Standard: 150}, Near},
		{"far below", mid, AltitudeCollection{GPS: 50, Standard: 50}, None},
		{"very near above", mid, AltitudeCollection{GPS: 2000, Standard: 2050}, VeryNear},
		{"near above", mid, AltitudeCollection{GPS: 2000, Standard: 2150}, Near},
		{"far above", mid, AltitudeCollection{GPS: 2000, Standard: 2500}, None},
		{"unlimited floor", New(Record{Lower: Limit{0, Unlimited}, Upper: Limit{0, Unlimited}}),
			AltitudeCollection{GPS: 1000}, None},
		{"unlimited ceiling", New(Record{Lower: Limit{2000, MSL}, Upper: Limit{0, Unlimited}}),
			AltitudeCollection{GPS: 12000}, Inside},
		// A missing ceiling never contains anything.
		{"unset ceiling", New(Record{Lower: Limit{2000, MSL}}), AltitudeCollection{GPS: 12000}, None},
		// The ground error is applied to make a conflict more likely.
		{"gnd floor with error", New(Record{Lower: Limit{1000, GND}, Upper: Limit{3000, GND}}),
			AltitudeCollection{Ground: 290, GroundError: 20}, Inside},
		{"gnd ceiling with error", New(Record{Lower: Limit{0, GND}, Upper: Limit{1000, GND}}),
			AltitudeCollection{Ground: 320, GroundError: 20}, Inside},
		{"gnd ceiling above", New(Record{Lower: Limit{0, GND}, Upper: Limit{1000, GND}}),
			AltitudeCollection{Ground: 450, GroundError: 20}, Near},
	}

	for _, test := range tests {
		if c := test.airspace.Classify(test.alts, testDistance); c != test.expected {
			t.Errorf("%s: got %v, expected %v", test.name, c, test.expected)
		}
	}
}

func TestConflictOrder(t *testing.T) {
	if !(None < Near && Near < VeryNear && VeryNear < Inside) {
		t.Errorf("conflict types are not ordered")
	}
	if MinConflict(Inside, Near) != Near || MaxConflict(Near, VeryNear) != VeryNear {
		t.Errorf("min/max mismatch")
	}
}

func TestCategories(t *testing.T) {
	for _, c := range AllCategories() {
		if !c.Valid() {
			t.Errorf("%d: not valid", c)
		}
		if rc, ok := CategoryFromCanonical(c.CanonicalName()); !ok || rc != c {
			t.Errorf("%s: canonical name lookup returned %v", c, rc)
		}
	}
	if _, ok := CategoryFromCanonical("Unknown"); ok {
		t.Errorf("Unknown should not map to a category")
	}
	if ControlD.TypeName() != "CTR-D" || ClassE.TypeName() != "AS-E" || TMZ.CanonicalName() != "Tmz" {
		t.Errorf("unexpected names")
	}
	if Category(200).Valid() || Category(200).TypeName() != "unknown" {
		t.Errorf("out of range category")
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		record Record
		info   string
	}{
		{Record{Name: "Frankfurt", Category: ControlD, Lower: Limit{0, GND}, Upper: Limit{2500, MSL}},
			"CTR-D Frankfurt\nGND / 762 m MSL"},
		{Record{Name: "ED-R 1", Category: Restricted, Lower: Limit{1000, GND}, Upper: Limit{100, FlightLevel}},
			"Restricted ED-R 1\n305 m GND / FL 100 (3048 m)"},
		{Record{Name: "Top", Category: ClassA, Lower: Limit{195, FlightLevel}, Upper: Limit{0, Unlimited}},
			"AS-A Top\nFL 195 (5944 m) / Unlimited"},
	}
	for _, test := range tests {
		if info := New(test.record).InfoString(); info != test.info {
			t.Errorf("got %q, expected %q", info, test.info)
		}
	}
}

func TestRegion(t *testing.T) {
	// 10km square.
	square := []projection.Point{{0, 0}, {10000, 0}, {10000, 10000}, {0, 10000}}
	r := NewRegion(square)

	tests := []struct {
		p        projection.Point
		expected ConflictType
	}{
		{projection.Point{5000, 5000}, Inside},
		{projection.Point{10500, 5000}, VeryNear},
		{projection.Point{5000, -1500}, Near},
		{projection.Point{-3000, 5000}, None},
		{projection.Point{50000, 50000}, None},
	}
	for _, test := range tests {
		if c := r.Classify(test.p, testDistance); c != test.expected {
			t.Errorf("%v: got %v, expected %v", test.p, c, test.expected)
		}
	}

	if NewRegion(square[:1]) != nil {
		t.Errorf("single point region should be nil")
	}
	line := NewRegion(square[:2])
	if line == nil || line.Classify(projection.Point{5000, 500}, testDistance) != VeryNear {
		t.Errorf("two point region should support distance classification")
	}
}

func TestRepository(t *testing.T) {
	pts := []projection.Point{{0, 0}, {100, 0}, {100, 100}}
	high := New(Record{Name: "high", Lower: Limit{0, GND}, Upper: Limit{100, FlightLevel}, Points: pts})
	low := New(Record{Name: "low", Lower: Limit{0, GND}, Upper: Limit{2000, MSL}, Points: pts})
	lowest := New(Record{Name: "lowest", Lower: Limit{0, GND}, Upper: Limit{2000, MSL}, Points: pts[:1]})
	lowest.LowerMeters = -1

	desc := projection.Descriptor{Kind: projection.KindCylindrical, Parallel1: 50}
	repo := NewRepository(desc, []*Airspace{high, low, lowest})
	if repo.Len() != 3 {
		t.Fatalf("got %d airspaces", repo.Len())
	}
	var names []string
	for _, a := range repo.Airspaces() {
		names = append(names, a.Name)
	}
	if names[0] != "lowest" || names[1] != "low" || names[2] != "high" {
		t.Errorf("unexpected order %v", names)
	}

	if repo.Region(0) != nil {
		t.Errorf("single point airspace should have no region")
	}
	if r := repo.Region(1); r == nil || r != repo.Region(1) {
		t.Errorf("region should be built once and kept")
	}

	n := 0
	for a, r := range repo.All() {
		if r == nil || a == lowest {
			t.Errorf("All returned %v with region %v", a, r)
		}
		n++
	}
	if n != 2 {
		t.Errorf("All returned %d airspaces", n)
	}

	var empty *Repository
	if empty.Len() != 0 || len(empty.Airspaces()) != 0 {
		t.Errorf("nil repository should be empty")
	}
}
