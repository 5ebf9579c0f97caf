// cmd/airwarn/track.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/glidernav/airwarn/airspace"
	"github.com/glidernav/airwarn/math"

	"github.com/klauspost/compress/zstd"
)

var ErrMalformedFix = errors.New("malformed track fix")

// fix is one recorded position of a flight track. Track files are CSV
// with one fix per line:
//
//	time (RFC 3339), position, GPS altitude, pressure altitude, height above ground[, ground error]
//
// Altitudes are in meters and positions are written the way OpenAir
// writes them, e.g. "50:05:00N 010:05:00E". Lines starting with '#' are
// comments.
type fix struct {
	Time time.Time
	Pos  math.Point2LL
	Alts airspace.AltitudeCollection
}

type trackFile struct {
	io.Reader
	closers []io.Closer
}

func (t *trackFile) Close() error {
	var errs []error
	for _, c := range t.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// openTrack opens a track file, decompressing it if its name ends in
// ".zst".
func openTrack(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}

	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(0))
	if err != nil {
		f.Close()
		return nil, err
	}
	return &trackFile{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), f}}, nil
}

func readTrack(r io.Reader) ([]fix, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var fixes []fix
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return fixes, nil
		} else if err != nil {
			return nil, err
		}

		line, _ := cr.FieldPos(0)
		f, err := parseFix(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		fixes = append(fixes, f)
	}
}

func parseFix(rec []string) (fix, error) {
	if len(rec) < 5 || len(rec) > 6 {
		return fix{}, fmt.Errorf("%d fields: %w", len(rec), ErrMalformedFix)
	}

	var f fix
	var err error
	if f.Time, err = time.Parse(time.RFC3339, rec[0]); err != nil {
		return fix{}, fmt.Errorf("%v: %w", err, ErrMalformedFix)
	}
	if f.Pos, err = math.ParseCoordinate(rec[1]); err != nil {
		return fix{}, err
	}

	alts := []*float64{&f.Alts.GPS, &f.Alts.Standard, &f.Alts.Ground, &f.Alts.GroundError}
	for i, s := range rec[2:] {
		if *alts[i], err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return fix{}, fmt.Errorf("%v: %w", err, ErrMalformedFix)
		}
	}
	return f, nil
}
