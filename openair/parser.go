// openair/parser.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package openair reads airspace definitions in the OpenAir text format.
package openair

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/glidernav/airwarn/airspace"
	"github.com/glidernav/airwarn/log"
	"github.com/glidernav/airwarn/math"
	"github.com/glidernav/airwarn/projection"
	"github.com/glidernav/airwarn/util"

	"golang.org/x/text/encoding/charmap"
)

// Name given to airspaces without an AN line.
const unnamed = "(unnamed)"

// colorEntry is emitted by some producers as the name of styling-only
// records.
const colorEntry = "COLORENTRY"

// Parser converts OpenAir files into airspace records projected with
// the given projection.
type Parser struct {
	proj projection.Projection
	lg   *log.Logger
}

func NewParser(proj projection.Projection, lg *log.Logger) *Parser {
	return &Parser{proj: proj, lg: lg}
}

// Result is the outcome of parsing one file.
type Result struct {
	Name    string
	Records []airspace.Record
	// HadError is set if any line could not be parsed. Such a result
	// should not be cached.
	HadError bool
	Lines    int
	Warnings []string
}

// ParseFile parses the OpenAir file at path, applying the class-code
// overrides from its sibling mapping file if there is one. An error is
// only returned if the file cannot be read at all.
func (p *Parser) ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := LoadMapping(MappingPath(path), p.lg)
	if err != nil {
		p.lg.Warnf("%v: using default class mappings", err)
	}

	start := time.Now()
	r := p.Parse(f, path, m)
	p.lg.Info("read airspaces", slog.String("path", path), slog.Int("count", len(r.Records)),
		slog.Duration("elapsed", time.Since(start)))
	return r, nil
}

// Parse reads OpenAir directives from r. name identifies the input in
// warnings. If m is nil, the default class mappings are used.
func (p *Parser) Parse(r io.Reader, name string, m *Mapping) *Result {
	if m == nil {
		m = DefaultMapping()
	}

	s := &fileState{
		proj:    p.proj,
		lg:      p.lg,
		mapping: m,
		result:  &Result{Name: name},
		// Both start out set so that the first AC or AN line opens a
		// record.
		acRead:    true,
		anRead:    true,
		direction: 1,
	}
	s.errs.Push(name)

	sc := bufio.NewScanner(latin9Reader(r))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		s.lineNumber++

		line := simplify(sc.Text())
		if line == "" || line[0] == '*' || line[0] == '#' {
			continue
		}
		// Strip trailing comments.
		line, _, _ = strings.Cut(line, "*")
		line, _, _ = strings.Cut(line, "#")

		s.errs.Push("line " + strconv.Itoa(s.lineNumber))
		s.parseLine(line)
		s.errs.Pop()
	}
	if err := sc.Err(); err != nil {
		s.errs.Error(err)
		s.result.HadError = true
	}

	if s.current {
		s.finish()
	}

	s.result.Lines = s.lineNumber
	s.result.Warnings = s.errs.Errors()
	s.errs.LogWarnings(p.lg)
	return s.result
}

func latin9Reader(r io.Reader) io.Reader {
	return charmap.ISO8859_15.NewDecoder().Reader(r)
}

// simplify trims s and collapses internal runs of whitespace to a single
// space.
func simplify(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// fileState holds the parser state for a single input.
type fileState struct {
	proj    projection.Projection
	lg      *log.Logger
	mapping *Mapping
	result  *Result
	errs    util.ErrorLogger

	lineNumber int

	// acRead and anRead record whether the class and name of the open
	// record have been seen; once both have, the next AC or AN starts a
	// new one.
	acRead, anRead bool
	current        bool

	name         string
	category     airspace.Category
	lower, upper airspace.Limit
	points       []math.Point2LL

	center    math.Point2LL
	direction int
	width     float64
}

func (s *fileState) parseLine(line string) {
	tag, args, _ := strings.Cut(line, " ")

	if (tag == "AC" || tag == "AN") && s.acRead && s.anRead {
		if s.current {
			s.finish()
		}
		s.begin()
	}

	switch tag {
	case "AC":
		s.acRead = true
		s.parseClass(args)
		return

	case "AN":
		s.anRead = true
		s.name = strings.TrimSpace(args)
		if s.name == colorEntry {
			// Styling only; resynchronize without a record.
			s.current = false
			s.acRead, s.anRead = true, true
		}
		return
	}

	if !s.current {
		return
	}

	var err error
	switch tag {
	case "AH":
		s.upper = s.parseAltitude(args)
	case "AL":
		s.lower = s.parseAltitude(args)
	case "DP":
		var p math.Point2LL
		if p, err = math.ParseCoordinate(args); err == nil {
			s.points = append(s.points, p)
		}
	case "DC":
		var r float64
		if r, err = strconv.ParseFloat(strings.TrimSpace(args), 64); err == nil {
			s.addCircle(r)
		}
	case "DA":
		err = s.angleArc(args)
	case "DB":
		err = s.coordinateArc(args)
	case "V":
		err = s.variable(args)
	case "DY", "AT", "TO", "TC", "SP", "SB":
		// Airways, label placement, terrain and styling are ignored.
	default:
		s.lg.Debugf("%s:%d: unknown record type %q", s.result.Name, s.lineNumber, line)
	}

	if err != nil {
		s.errs.ErrorString("%s: %v", tag, err)
		s.result.HadError = true
	}
}

// begin opens a new record with default attributes.
func (s *fileState) begin() {
	s.name = unnamed
	s.category = airspace.CategoryUnknown
	s.lower, s.upper = airspace.Limit{}, airspace.Limit{}
	s.points = nil
	s.current = true
	s.acRead, s.anRead = false, false
	s.direction = 1
}

func (s *fileState) parseClass(code string) {
	c, err := s.mapping.Category(strings.TrimSpace(code))
	if err != nil {
		s.errs.ErrorString("%v; airspace ignored", err)
		// Stop accepting lines for this record.
		s.current = false
		return
	}
	s.category = c
}

func (s *fileState) parseAltitude(field string) airspace.Limit {
	l, warnings := ParseAltitude(field)
	for _, w := range warnings {
		s.errs.ErrorString("%s", w)
	}
	return l
}

// finish closes the open record and, if it has enough points, projects
// it and adds it to the result.
func (s *fileState) finish() {
	s.current = false
	s.acRead, s.anRead = false, false

	pts := s.points
	if len(pts) < 2 {
		s.errs.ErrorString("%q has too few coordinates; ignoring it", s.name)
		return
	}
	// Outlines are stored open; drop a repeated start point.
	if len(pts) > 2 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}

	projected := make([]projection.Point, len(pts))
	for i, p := range pts {
		projected[i] = s.proj.Project(p)
	}

	s.result.Records = append(s.result.Records, airspace.Record{
		Name:     s.name,
		Category: s.category,
		Lower:    s.lower,
		Upper:    s.upper,
		Points:   projected,
	})
}

func (r *Result) String() string {
	return fmt.Sprintf("%s: %d airspaces from %d lines", r.Name, len(r.Records), r.Lines)
}
