// projection/projection.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package projection provides the map projections used to turn WGS84
// positions into planar map coordinates, along with descriptors that
// identify a projection well enough to tell when a stored geometry was
// produced under a different one.
package projection

import (
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"

	"github.com/glidernav/airwarn/math"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Point is a projected map position in meters; X grows east and Y north.
type Point = math.Point2i

type Kind uint8

const (
	KindUnknown Kind = iota
	KindCylindrical
	KindLambert
)

func (k Kind) String() string {
	switch k {
	case KindCylindrical:
		return "Cylindrical"
	case KindLambert:
		return "Lambert"
	default:
		return "Unknown"
	}
}

var (
	ErrUnknownKind      = errors.New("unknown projection kind")
	ErrInvalidParameter = errors.New("invalid projection parameter")
)

// Projection maps WGS84 positions to planar map coordinates.
type Projection interface {
	Project(math.Point2LL) Point
	Descriptor() Descriptor
}

// Descriptor identifies a projection and its defining parameters. All
// angles are in degrees. Two projections with equal descriptors produce
// identical output for every input.
type Descriptor struct {
	Kind      Kind    `msgpack:"kind"`
	Parallel1 float64 `msgpack:"p1"`
	Parallel2 float64 `msgpack:"p2,omitempty"`
	OriginLat float64 `msgpack:"olat,omitempty"`
	OriginLon float64 `msgpack:"olon,omitempty"`
}

func (d Descriptor) Equal(o Descriptor) bool {
	return d == o
}

func (d Descriptor) IsZero() bool {
	return d == Descriptor{}
}

// Fingerprint returns a stable hash of the descriptor, suitable for cache
// keys and log output.
func (d Descriptor) Fingerprint() uint64 {
	var buf [1 + 4*8]byte
	buf[0] = byte(d.Kind)
	for i, v := range []float64{d.Parallel1, d.Parallel2, d.OriginLat, d.OriginLon} {
		binary.LittleEndian.PutUint64(buf[1+8*i:], gomath.Float64bits(v))
	}
	return xxhash.Sum64(buf[:])
}

// descriptorFields has Descriptor's fields without its methods so that
// msgpack encodes the struct rather than calling MarshalBinary.
type descriptorFields Descriptor

func (d Descriptor) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal((*descriptorFields)(&d))
}

func (d *Descriptor) UnmarshalBinary(data []byte) error {
	var nd descriptorFields
	if err := msgpack.Unmarshal(data, &nd); err != nil {
		return err
	}
	*d = Descriptor(nd)
	return nil
}

func (d Descriptor) String() string {
	switch d.Kind {
	case KindCylindrical:
		return fmt.Sprintf("Cylindrical(%.4f)", d.Parallel1)
	case KindLambert:
		return fmt.Sprintf("Lambert(%.4f, %.4f, origin %.4f/%.4f)", d.Parallel1, d.Parallel2,
			d.OriginLat, d.OriginLon)
	default:
		return "Unknown"
	}
}

// New returns the projection described by d.
func New(d Descriptor) (Projection, error) {
	switch d.Kind {
	case KindCylindrical:
		return NewCylindrical(d.Parallel1)
	case KindLambert:
		return NewLambert(d.Parallel1, d.Parallel2, d.OriginLat, d.OriginLon)
	default:
		return nil, fmt.Errorf("%d: %w", d.Kind, ErrUnknownKind)
	}
}

func checkLatitude(name string, v float64) error {
	if gomath.IsNaN(v) || v <= -90 || v >= 90 {
		return fmt.Errorf("%s %f: %w", name, v, ErrInvalidParameter)
	}
	return nil
}

func checkLongitude(name string, v float64) error {
	if gomath.IsNaN(v) || v < -180 || v > 180 {
		return fmt.Errorf("%s %f: %w", name, v, ErrInvalidParameter)
	}
	return nil
}

func toPoint(x, y float64) Point {
	return Point{math.Round[int32](x), math.Round[int32](y)}
}

func llRadians(p math.Point2LL) (phi, lambda float64) {
	lat, lon := p.Degrees()
	return math.Radians(lat), math.Radians(lon)
}

///////////////////////////////////////////////////////////////////////////
// Cylindrical

// Cylindrical is an equidistant cylindrical projection with a single
// standard parallel along which the scale is true.
type Cylindrical struct {
	parallel float64
	cosPhi0  float64
}

func NewCylindrical(parallel float64) (*Cylindrical, error) {
	if err := checkLatitude("standard parallel", parallel); err != nil {
		return nil, err
	}
	return &Cylindrical{parallel: parallel, cosPhi0: gomath.Cos(math.Radians(parallel))}, nil
}

func (c *Cylindrical) Project(p math.Point2LL) Point {
	phi, lambda := llRadians(p)
	return toPoint(math.EarthRadius*lambda*c.cosPhi0, math.EarthRadius*phi)
}

func (c *Cylindrical) Descriptor() Descriptor {
	return Descriptor{Kind: KindCylindrical, Parallel1: c.parallel}
}

///////////////////////////////////////////////////////////////////////////
// Lambert

// Lambert is a spherical Lambert conformal conic projection with two
// standard parallels. Output is relative to the origin, which maps to
// (0, 0).
type Lambert struct {
	desc    Descriptor
	n, f    float64
	rho0    float64
	lambda0 float64
}

func NewLambert(parallel1, parallel2, originLat, originLon float64) (*Lambert, error) {
	for _, c := range []struct {
		name string
		v    float64
	}{{"first standard parallel", parallel1}, {"second standard parallel", parallel2}, {"origin latitude", originLat}} {
		if err := checkLatitude(c.name, c.v); err != nil {
			return nil, err
		}
	}
	if err := checkLongitude("origin longitude", originLon); err != nil {
		return nil, err
	}
	if parallel1 == -parallel2 {
		return nil, fmt.Errorf("standard parallels %f/%f are symmetric about the equator: %w",
			parallel1, parallel2, ErrInvalidParameter)
	}

	phi1, phi2 := math.Radians(parallel1), math.Radians(parallel2)
	t := func(phi float64) float64 { return gomath.Tan(gomath.Pi/4 + phi/2) }

	var n float64
	if parallel1 == parallel2 {
		n = gomath.Sin(phi1)
	} else {
		n = gomath.Log(gomath.Cos(phi1)/gomath.Cos(phi2)) / gomath.Log(t(phi2)/t(phi1))
	}
	f := gomath.Cos(phi1) * gomath.Pow(t(phi1), n) / n

	l := &Lambert{
		desc: Descriptor{
			Kind:      KindLambert,
			Parallel1: parallel1,
			Parallel2: parallel2,
			OriginLat: originLat,
			OriginLon: originLon,
		},
		n:       n,
		f:       f,
		lambda0: math.Radians(originLon),
	}
	l.rho0 = l.rho(math.Radians(originLat))
	return l, nil
}

func (l *Lambert) rho(phi float64) float64 {
	return math.EarthRadius * l.f / gomath.Pow(gomath.Tan(gomath.Pi/4+phi/2), l.n)
}

func (l *Lambert) Project(p math.Point2LL) Point {
	phi, lambda := llRadians(p)
	// Poles of the cone are singular; clamp just short of them.
	phi = math.Clamp(phi, -gomath.Pi/2+1e-9, gomath.Pi/2-1e-9)

	rho := l.rho(phi)
	theta := l.n * (lambda - l.lambda0)
	return toPoint(rho*gomath.Sin(theta), l.rho0-rho*gomath.Cos(theta))
}

func (l *Lambert) Descriptor() Descriptor {
	return l.desc
}
