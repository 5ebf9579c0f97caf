// conflict/aggregator.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package conflict evaluates the aircraft position against the loaded
// airspaces on every position update and decides which warnings to
// raise.
package conflict

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/glidernav/airwarn/airspace"
	"github.com/glidernav/airwarn/log"
	"github.com/glidernav/airwarn/math"
	"github.com/glidernav/airwarn/projection"

	"github.com/prometheus/client_golang/prometheus"
)

// Severities from most to least severe; the first one with something to
// report wins.
var severities = [...]airspace.ConflictType{airspace.Inside, airspace.VeryNear, airspace.Near}

// Opacity holds a fill opacity in percent for each conflict type.
type Opacity [airspace.Inside + 1]int

type Settings struct {
	WarningEnabled bool
	FillingEnabled bool
	PopupEnabled   bool

	Distances airspace.WarningDistance
	// SuppressTime is how long an unchanged warning is not raised again.
	SuppressTime time.Duration
	// DisplayTime is how long a pop-up is shown. The status is only
	// restated once this much time has passed since the last warning.
	DisplayTime time.Duration

	// Disabled categories are neither drawn nor warned about.
	Disabled map[airspace.Category]bool

	LateralOpacity  Opacity
	VerticalOpacity Opacity
}

type Options struct {
	Logger     *log.Logger
	Registerer prometheus.Registerer
	// Now returns the current time; time.Now if nil.
	Now func() time.Time
}

// StatusMessage is the short warning shown in the status bar.
type StatusMessage struct {
	Text string
	// Alarm is set when the message reports a new conflict rather than
	// restating a known one.
	Alarm bool
}

// Popup is a detailed warning listing newly entered airspaces.
type Popup struct {
	Text     string
	Duration time.Duration
}

// Report is the outcome of evaluating one position.
type Report struct {
	// NeedRedraw is set when the conflict state of some airspace changed
	// and filling is enabled.
	NeedRedraw bool
	Status     *StatusMessage
	Popup      *Popup

	// Info strings of all airspaces in conflict, by severity, sorted.
	Inside, VeryNear, Near []string
}

// conflictSet maps airspace info strings to their categories.
type conflictSet map[string]airspace.Category

func (s conflictSet) keys() []string {
	k := make([]string, 0, len(s))
	for key := range s {
		k = append(k, key)
	}
	slices.Sort(k)
	return k
}

type lastWarning struct {
	text string
	at   time.Time
}

// Aggregator tracks the conflicts between the aircraft and the airspaces
// of a repository across position updates. It is not safe for concurrent
// use.
type Aggregator struct {
	repo     *airspace.Repository
	proj     projection.Projection
	settings Settings
	lg       *log.Logger
	metrics  *metrics
	now      func() time.Time

	// lateral holds the last lateral conflict of each airspace, indexed
	// like the repository.
	lateral []airspace.ConflictType

	// Airspaces in conflict at the last tick.
	active [airspace.Inside + 1]conflictSet

	lastStatus string
	warnings   [airspace.Inside + 1]lastWarning
}

func New(repo *airspace.Repository, proj projection.Projection, s Settings, opts Options) *Aggregator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	g := &Aggregator{
		proj:     proj,
		settings: s,
		lg:       opts.Logger.With(slog.String("component", "conflict")),
		metrics:  newMetrics(opts.Registerer),
		now:      now,
	}
	g.SetRepository(repo)
	return g
}

// SetRepository replaces the airspaces being checked, e.g. after a
// reload. Conflicts already reported stay known so that they are not
// raised again.
func (g *Aggregator) SetRepository(repo *airspace.Repository) {
	g.repo = repo
	g.lateral = make([]airspace.ConflictType, repo.Len())
}

func (g *Aggregator) SetSettings(s Settings) {
	g.settings = s
}

// Tick evaluates the position and altitudes of the aircraft.
func (g *Aggregator) Tick(pos math.Point2LL, alts airspace.AltitudeCollection) Report {
	start := time.Now()
	defer func() {
		g.metrics.ticks.Inc()
		g.metrics.duration.Observe(time.Since(start).Seconds())
	}()

	p := g.proj.Project(pos)
	dist := g.settings.Distances

	var all, fresh [airspace.Inside + 1]conflictSet
	for _, c := range severities {
		all[c], fresh[c] = make(conflictSet), make(conflictSet)
	}

	redraw, warn := false, false
	for i, a := range g.repo.Airspaces() {
		if g.settings.Disabled[a.Category] {
			continue
		}
		reg := g.repo.Region(i)
		if reg == nil {
			continue
		}

		lastV := a.LastVerticalConflict
		last := airspace.MinConflict(g.lateral[i], lastV)

		v := a.Classify(alts, dist)
		redraw = redraw || v != lastV
		if v == airspace.None {
			// No vertical overlap means no conflict at all.
			continue
		}

		h := reg.Classify(p, dist)
		g.lateral[i] = h

		c := airspace.MinConflict(h, v)
		redraw = redraw || c != last
		if c == airspace.None {
			continue
		}

		key := a.InfoString()
		all[c][key] = a.Category
		if _, ok := g.active[c][key]; !ok {
			fresh[c][key] = a.Category
			warn = true
		}
	}
	g.active = all

	r := Report{
		NeedRedraw: redraw && g.settings.FillingEnabled,
		Inside:     all[airspace.Inside].keys(),
		VeryNear:   all[airspace.VeryNear].keys(),
		Near:       all[airspace.Near].keys(),
	}
	if !g.settings.WarningEnabled {
		return r
	}

	now := g.now()
	for _, c := range severities {
		if len(fresh[c]) == 0 {
			continue
		}

		g.setStatus(&r, statusText(c, all[c]), true)

		text := detailText(c, fresh[c])
		lw := &g.warnings[c]
		if lw.text == text && !lw.at.IsZero() && now.Sub(lw.at) <= g.settings.SuppressTime {
			warn = false
		} else {
			lw.text, lw.at = text, now
		}

		if warn {
			g.metrics.warnings.WithLabelValues(c.String()).Inc()
			g.lg.Info("airspace warning", slog.String("severity", c.String()),
				slog.String("position", pos.DMSString()), slog.Any("airspaces", fresh[c].keys()))
			if g.settings.PopupEnabled {
				r.Popup = &Popup{Text: text, Duration: g.settings.DisplayTime}
			}
		}
		return r
	}

	// Nothing new. Once every pop-up has had its time, restate the most
	// severe conflict that is still active or clear the status.
	if !g.expired(now) {
		return r
	}
	for _, c := range severities {
		if len(all[c]) > 0 {
			g.setStatus(&r, statusText(c, all[c]), false)
			return r
		}
	}
	if g.lastStatus != "" {
		g.lastStatus = ""
		r.Status = &StatusMessage{Text: " "}
	}
	return r
}

// setStatus reports text in r unless it is already being shown.
func (g *Aggregator) setStatus(r *Report, text string, alarm bool) {
	if text != g.lastStatus {
		g.lastStatus = text
		r.Status = &StatusMessage{Text: text, Alarm: alarm}
	}
}

// expired reports whether the display time of the last warning of every
// severity has passed. Severities never warned about count as expired.
func (g *Aggregator) expired(now time.Time) bool {
	for _, c := range severities {
		if at := g.warnings[c].at; !at.IsZero() && now.Sub(at) <= g.settings.DisplayTime {
			return false
		}
	}
	return true
}

// statusText is the severity followed by the type names of the
// airspaces, in the order of their info strings.
func statusText(c airspace.ConflictType, s conflictSet) string {
	names := make([]string, 0, len(s))
	for _, key := range s.keys() {
		names = append(names, s[key].TypeName())
	}
	return c.String() + " " + strings.Join(names, ", ")
}

// detailText lists the newly entered airspaces.
func detailText(c airspace.ConflictType, s conflictSet) string {
	var sb strings.Builder
	sb.WriteString("Airspace Warning")
	for _, key := range s.keys() {
		sb.WriteString("\n" + c.String() + " " + key)
	}
	return sb.String()
}

// FillOpacity returns the opacity in percent to fill an airspace with.
// Laterally inside an airspace the vertical conflict decides; otherwise
// the lateral one does.
func (g *Aggregator) FillOpacity(lateral, vertical airspace.ConflictType) int {
	return FillOpacity(g.settings, lateral, vertical)
}

func FillOpacity(s Settings, lateral, vertical airspace.ConflictType) int {
	if lateral == airspace.Inside {
		return s.VerticalOpacity[min(vertical, airspace.Inside)]
	}
	return s.LateralOpacity[min(lateral, airspace.Inside)]
}
