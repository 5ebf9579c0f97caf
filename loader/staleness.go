// loader/staleness.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package loader

import (
	"time"

	"github.com/glidernav/airwarn/projection"
)

// Staleness holds what is known about a compiled file and the inputs it
// was produced from.
type Staleness struct {
	// HeaderValid is false if the compiled file's header could not be
	// read or did not match the current format.
	HeaderValid   bool
	SourceModTime time.Time
	CacheCreated  time.Time
	// ConfigModTime is the modification time of the mapping file, or
	// zero if there is none.
	ConfigModTime time.Time
	Cached        projection.Descriptor
	Current       projection.Descriptor
}

// ShouldInvalidate reports whether a compiled file must be discarded and
// its source parsed again.
func ShouldInvalidate(s Staleness) bool {
	switch {
	case !s.HeaderValid:
		return true
	case s.SourceModTime.After(s.CacheCreated):
		return true
	case !s.ConfigModTime.IsZero() && s.ConfigModTime.After(s.CacheCreated):
		return true
	default:
		// Vertices are projected, so geometry from another projection is
		// wrong even if the source is unchanged.
		return !s.Cached.Equal(s.Current)
	}
}
