// airspace/region.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package airspace

import (
	"github.com/glidernav/airwarn/math"
	"github.com/glidernav/airwarn/projection"
)

// Region is the lateral extent of an airspace in map coordinates.
type Region struct {
	Points []projection.Point
	Extent math.Extent2D
}

// NewRegion returns the region bounded by pts, or nil if there are too
// few points to describe one.
func NewRegion(pts []projection.Point) *Region {
	if len(pts) < 2 {
		return nil
	}
	return &Region{Points: pts, Extent: math.Extent2DFromPoints(pts)}
}

// Inside reports whether p is within the region's outline.
func (r *Region) Inside(p projection.Point) bool {
	return r.Extent.Inside(p) && math.PointInPolygon(p, r.Points)
}

// Classify returns the lateral conflict of the position p with the
// region, ignoring altitude.
func (r *Region) Classify(p projection.Point, dist WarningDistance) ConflictType {
	margin := math.Round[int32](max(dist.HorClose, dist.HorVeryClose, 0))
	if !r.Extent.Expand(margin).Inside(p) {
		return None
	}
	if math.PointInPolygon(p, r.Points) {
		return Inside
	}

	d := math.PointPolygonDistance(p, r.Points)
	switch {
	case d <= dist.HorVeryClose:
		return VeryNear
	case d <= dist.HorClose:
		return Near
	default:
		return None
	}
}
