// airspace/repository.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package airspace

import (
	"iter"
	"slices"

	"github.com/glidernav/airwarn/projection"
)

// Repository owns the loaded airspaces and their regions. Regions are
// built on first use and stored at the same index as their airspace.
// A Repository is replaced as a whole when airspaces are reloaded.
type Repository struct {
	Projection projection.Descriptor

	airspaces []*Airspace
	regions   []*Region
	built     []bool
}

// NewRepository returns a repository holding the given airspaces, sorted
// by their vertical limits.
func NewRepository(desc projection.Descriptor, as []*Airspace) *Repository {
	as = slices.Clone(as)
	slices.SortStableFunc(as, Compare)
	return &Repository{
		Projection: desc,
		airspaces:  as,
		regions:    make([]*Region, len(as)),
		built:      make([]bool, len(as)),
	}
}

func (r *Repository) Len() int {
	if r == nil {
		return 0
	}
	return len(r.airspaces)
}

func (r *Repository) At(i int) *Airspace {
	return r.airspaces[i]
}

// Airspaces returns the airspaces in order. The slice must not be
// modified.
func (r *Repository) Airspaces() []*Airspace {
	if r == nil {
		return nil
	}
	return r.airspaces
}

// All iterates over the airspaces along with their regions; airspaces
// without a valid region are skipped.
func (r *Repository) All() iter.Seq2[*Airspace, *Region] {
	return func(yield func(*Airspace, *Region) bool) {
		for i := range r.Len() {
			if reg := r.Region(i); reg != nil {
				if !yield(r.airspaces[i], reg) {
					return
				}
			}
		}
	}
}

// Region returns the region of the i-th airspace, or nil if its outline
// has too few points.
func (r *Repository) Region(i int) *Region {
	if !r.built[i] {
		r.regions[i] = NewRegion(r.airspaces[i].Points)
		r.built[i] = true
	}
	return r.regions[i]
}

// Records returns the records of all airspaces.
func (r *Repository) Records() []Record {
	recs := make([]Record, 0, r.Len())
	for _, a := range r.Airspaces() {
		recs = append(recs, a.Record)
	}
	return recs
}
