// math/geom.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
)

// Point2i is a point in planar map coordinates: 0 (x) is east, 1 (y) is
// north.
type Point2i [2]int32

func (p Point2i) X() int32 { return p[0] }
func (p Point2i) Y() int32 { return p[1] }

func Sub2i(a, b Point2i) [2]float64 {
	return [2]float64{float64(a[0]) - float64(b[0]), float64(a[1]) - float64(b[1])}
}

// Distance2i returns the euclidean distance between two planar points.
func Distance2i(a, b Point2i) float64 {
	d := Sub2i(a, b)
	return gomath.Hypot(d[0], d[1])
}

///////////////////////////////////////////////////////////////////////////
// Extent2D

// Extent2D represents a 2D bounding box with the two vertices at its
// opposite minimum and maximum corners.
type Extent2D struct {
	P0, P1 Point2i
}

// EmptyExtent2D returns an Extent2D representing an empty bounding box.
func EmptyExtent2D() Extent2D {
	// Degenerate bounds
	return Extent2D{
		P0: Point2i{gomath.MaxInt32, gomath.MaxInt32},
		P1: Point2i{gomath.MinInt32, gomath.MinInt32},
	}
}

// Extent2DFromPoints returns an Extent2D that bounds all of the provided
// points.
func Extent2DFromPoints(pts []Point2i) Extent2D {
	e := EmptyExtent2D()
	for _, p := range pts {
		e = Union(e, p)
	}
	return e
}

func (e Extent2D) IsEmpty() bool {
	return e.P0[0] > e.P1[0] || e.P0[1] > e.P1[1]
}

// Expand expands the extent by the given distance in all directions.
func (e Extent2D) Expand(d int32) Extent2D {
	if e.IsEmpty() {
		return e
	}
	sat := func(v int64) int32 {
		return int32(Clamp(v, gomath.MinInt32, gomath.MaxInt32))
	}
	return Extent2D{
		P0: Point2i{sat(int64(e.P0[0]) - int64(d)), sat(int64(e.P0[1]) - int64(d))},
		P1: Point2i{sat(int64(e.P1[0]) + int64(d)), sat(int64(e.P1[1]) + int64(d))},
	}
}

func (e Extent2D) Inside(p Point2i) bool {
	return p[0] >= e.P0[0] && p[0] <= e.P1[0] && p[1] >= e.P0[1] && p[1] <= e.P1[1]
}

func Union(e Extent2D, p Point2i) Extent2D {
	e.P0[0] = min(e.P0[0], p[0])
	e.P0[1] = min(e.P0[1], p[1])
	e.P1[0] = max(e.P1[0], p[0])
	e.P1[1] = max(e.P1[1], p[1])
	return e
}

///////////////////////////////////////////////////////////////////////////
// Geometry

// PointInPolygon checks whether the given point is inside the given polygon;
// it assumes that the last vertex does not repeat the first one, and so includes
// the edge from pts[len(pts)-1] to pts[0] in its test.
func PointInPolygon(p Point2i, pts []Point2i) bool {
	inside := false
	px, py := float64(p[0]), float64(p[1])
	for i := 0; i < len(pts); i++ {
		p0, p1 := pts[i], pts[(i+1)%len(pts)]
		y0, y1 := float64(p0[1]), float64(p1[1])
		if (y0 <= py && py < y1) || (y1 <= py && py < y0) {
			x0, x1 := float64(p0[0]), float64(p1[0])
			x := x0 + (py-y0)*(x1-x0)/(y1-y0)
			if x > px {
				inside = !inside
			}
		}
	}
	return inside
}

// Return minimum distance between line segment vw and point p
// https://stackoverflow.com/a/1501725
func PointSegmentDistance(p, v, w Point2i) float64 {
	l := Sub2i(w, v)
	l2 := l[0]*l[0] + l[1]*l[1]
	if l2 == 0 {
		return Distance2i(p, v)
	}
	pv := Sub2i(p, v)
	t := Clamp((pv[0]*l[0]+pv[1]*l[1])/l2, 0, 1)
	proj := [2]float64{float64(v[0]) + t*l[0], float64(v[1]) + t*l[1]}
	return gomath.Hypot(float64(p[0])-proj[0], float64(p[1])-proj[1])
}

// PointPolygonDistance returns the minimum distance from p to the closed
// boundary of the polygon given by pts.
func PointPolygonDistance(p Point2i, pts []Point2i) float64 {
	switch len(pts) {
	case 0:
		return gomath.Inf(1)
	case 1:
		return Distance2i(p, pts[0])
	}

	d := gomath.Inf(1)
	for i := range pts {
		d = min(d, PointSegmentDistance(p, pts[i], pts[(i+1)%len(pts)]))
	}
	return d
}
