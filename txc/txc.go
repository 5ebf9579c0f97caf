// txc/txc.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package txc reads and writes compiled airspace files: a flat binary
// form of parsed OpenAir records that is much cheaper to load than the
// source text.
//
// All values are little-endian. A file starts with a header
//
//	uint32 magic
//	int8   file type
//	uint16 format version
//	int64  creation time, unix nanoseconds
//	uint16 length, then a msgpack projection descriptor
//
// followed by a uint32 record count and the records:
//
//	uint16 length, then the name in UTF-8
//	uint8  category
//	uint8  lower reference, int16 lower value
//	uint8  upper reference, int16 upper value
//	uint16 point count, then that many int32 x, int32 y pairs
package txc

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"
	"os"
	"time"

	"github.com/glidernav/airwarn/airspace"
	"github.com/glidernav/airwarn/projection"
	"github.com/glidernav/airwarn/util"
)

const (
	Magic    uint32 = 0x404B464C // "@KFL"
	FileType int8   = 0x61
	Version  uint16 = 203
)

// Extension is the file extension of compiled airspace files.
const Extension = ".txc"

var (
	ErrBadMagic   = errors.New("not a compiled airspace file")
	ErrBadType    = errors.New("wrong compiled file type")
	ErrBadVersion = errors.New("unsupported compiled file version")
	ErrTruncated  = errors.New("compiled file is truncated")
	ErrValueRange = errors.New("value out of range for compiled file")
)

// Header describes when and under which projection a compiled file was
// written.
type Header struct {
	Created    time.Time
	Projection projection.Descriptor
}

///////////////////////////////////////////////////////////////////////////
// Writing

// WriteFile writes the records to path. The file is written to a
// temporary name first so an interrupted write never leaves a partial
// file behind.
func WriteFile(path string, hdr Header, recs []airspace.Record) error {
	err := util.WriteFileAtomic(path, func(w io.Writer) error {
		return Encode(w, hdr, recs)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Encode writes the header and records to w.
func Encode(w io.Writer, hdr Header, recs []airspace.Record) error {
	desc, err := hdr.Projection.MarshalBinary()
	if err != nil {
		return err
	}
	if len(desc) > gomath.MaxUint16 {
		return fmt.Errorf("projection descriptor: %w", ErrValueRange)
	}
	if uint64(len(recs)) > gomath.MaxUint32 {
		return fmt.Errorf("%d records: %w", len(recs), ErrValueRange)
	}

	bw := bufio.NewWriter(w)
	e := &encoder{w: bw}
	e.put(Magic)
	e.put(FileType)
	e.put(Version)
	e.put(hdr.Created.UnixNano())
	e.put(uint16(len(desc)))
	e.bytes(desc)
	e.put(uint32(len(recs)))

	for i := range recs {
		if err := e.record(&recs[i]); err != nil {
			return fmt.Errorf("record %d %q: %w", i, recs[i].Name, err)
		}
	}
	if e.err != nil {
		return e.err
	}
	return bw.Flush()
}

type encoder struct {
	w   *bufio.Writer
	err error
}

func (e *encoder) put(v any) {
	if e.err == nil {
		e.err = binary.Write(e.w, binary.LittleEndian, v)
	}
}

func (e *encoder) bytes(b []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

func checkLimit(l airspace.Limit) error {
	if !l.Ref.Valid() {
		return fmt.Errorf("reference %d: %w", l.Ref, ErrValueRange)
	}
	if l.Value < gomath.MinInt16 || l.Value > gomath.MaxInt16 {
		return fmt.Errorf("altitude %d: %w", l.Value, ErrValueRange)
	}
	return nil
}

func (e *encoder) record(r *airspace.Record) error {
	if len(r.Name) > gomath.MaxUint16 {
		return fmt.Errorf("name length %d: %w", len(r.Name), ErrValueRange)
	}
	if !r.Category.Valid() {
		return fmt.Errorf("category %d: %w", r.Category, ErrValueRange)
	}
	if err := checkLimit(r.Lower); err != nil {
		return err
	}
	if err := checkLimit(r.Upper); err != nil {
		return err
	}
	if len(r.Points) > gomath.MaxUint16 {
		return fmt.Errorf("%d points: %w", len(r.Points), ErrValueRange)
	}

	e.put(uint16(len(r.Name)))
	e.bytes([]byte(r.Name))
	e.put(uint8(r.Category))
	e.put(uint8(r.Lower.Ref))
	e.put(int16(r.Lower.Value))
	e.put(uint8(r.Upper.Ref))
	e.put(int16(r.Upper.Value))
	e.put(uint16(len(r.Points)))
	e.put(r.Points)
	return e.err
}

///////////////////////////////////////////////////////////////////////////
// Reading

// ReadHeader reads just the header of the compiled file at path. It is
// used to check whether the file is still current without loading the
// records.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()

	hdr, err := decodeHeader(bufio.NewReader(f))
	if err != nil {
		return Header{}, fmt.Errorf("%s: %w", path, err)
	}
	return hdr, nil
}

// ReadFile reads the compiled file at path. Any mismatch in the header
// or a short read rejects the whole file.
func ReadFile(path string) (Header, []airspace.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, err
	}
	defer f.Close()

	hdr, recs, err := Decode(f)
	if err != nil {
		return Header{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return hdr, recs, nil
}

// Decode reads a header and records from r.
func Decode(r io.Reader) (Header, []airspace.Record, error) {
	br := bufio.NewReader(r)
	hdr, err := decodeHeader(br)
	if err != nil {
		return Header{}, nil, err
	}

	d := &decoder{r: br}
	var n uint32
	d.get(&n)
	if d.err != nil {
		return Header{}, nil, d.err
	}

	// The count comes from the file; don't trust it for preallocation
	// beyond what a plausible file holds.
	recs := make([]airspace.Record, 0, min(n, 1<<16))
	for i := range n {
		rec, err := d.record()
		if err != nil {
			return Header{}, nil, fmt.Errorf("record %d: %w", i, err)
		}
		recs = append(recs, rec)
	}
	return hdr, recs, nil
}

func decodeHeader(r io.Reader) (Header, error) {
	d := &decoder{r: r}

	var magic uint32
	if d.get(&magic); d.err != nil {
		return Header{}, d.err
	} else if magic != Magic {
		return Header{}, fmt.Errorf("magic %#x: %w", magic, ErrBadMagic)
	}

	var ft int8
	if d.get(&ft); d.err != nil {
		return Header{}, d.err
	} else if ft != FileType {
		return Header{}, fmt.Errorf("type %#x: %w", ft, ErrBadType)
	}

	var version uint16
	if d.get(&version); d.err != nil {
		return Header{}, d.err
	} else if version != Version {
		return Header{}, fmt.Errorf("version %d: %w", version, ErrBadVersion)
	}

	var created int64
	var descLen uint16
	d.get(&created)
	d.get(&descLen)
	desc := d.bytes(int(descLen))
	if d.err != nil {
		return Header{}, d.err
	}

	hdr := Header{Created: time.Unix(0, created)}
	if err := hdr.Projection.UnmarshalBinary(desc); err != nil {
		return Header{}, fmt.Errorf("projection descriptor: %w", err)
	}
	return hdr, nil
}

type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) fail(err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = ErrTruncated
	}
	d.err = err
}

func (d *decoder) get(v any) {
	if d.err == nil {
		if err := binary.Read(d.r, binary.LittleEndian, v); err != nil {
			d.fail(err)
		}
	}
}

func (d *decoder) bytes(n int) []byte {
	if d.err != nil {
		return nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		d.fail(err)
		return nil
	}
	return b
}

func (d *decoder) record() (airspace.Record, error) {
	var nameLen uint16
	d.get(&nameLen)
	name := d.bytes(int(nameLen))

	var cat, lowerRef, upperRef uint8
	var lower, upper int16
	var npts uint16
	d.get(&cat)
	d.get(&lowerRef)
	d.get(&lower)
	d.get(&upperRef)
	d.get(&upper)
	d.get(&npts)
	if d.err != nil {
		return airspace.Record{}, d.err
	}

	pts := make([]projection.Point, npts)
	d.get(pts)
	if d.err != nil {
		return airspace.Record{}, d.err
	}

	r := airspace.Record{
		Name:     string(name),
		Category: airspace.Category(cat),
		Lower:    airspace.Limit{Value: int(lower), Ref: airspace.Reference(lowerRef)},
		Upper:    airspace.Limit{Value: int(upper), Ref: airspace.Reference(upperRef)},
		Points:   pts,
	}
	if !r.Category.Valid() {
		return airspace.Record{}, fmt.Errorf("category %d: %w", cat, ErrValueRange)
	}
	if !r.Lower.Ref.Valid() || !r.Upper.Ref.Valid() {
		return airspace.Record{}, fmt.Errorf("reference %d/%d: %w", lowerRef, upperRef, ErrValueRange)
	}
	return r, nil
}
