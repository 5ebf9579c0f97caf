// loader/metrics.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package loader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sources of loaded airspaces, used as the "source" label.
const (
	sourceText     = "source"
	sourceCompiled = "compiled"
	sourceMemory   = "memory"
)

type metrics struct {
	parsed    prometheus.Counter
	hits      *prometheus.CounterVec
	rejects   prometheus.Counter
	writes    *prometheus.CounterVec
	airspaces *prometheus.CounterVec
}

// newMetrics creates the loader's collectors on reg. With a nil reg they
// are created but not registered.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		parsed: f.NewCounter(prometheus.CounterOpts{
			Name: "airwarn_loader_files_parsed_total",
			Help: "OpenAir source files parsed.",
		}),
		hits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "airwarn_loader_cache_hits_total",
			Help: "Compiled files used instead of parsing, by tier.",
		}, []string{"tier"}),
		rejects: f.NewCounter(prometheus.CounterOpts{
			Name: "airwarn_loader_cache_rejects_total",
			Help: "Compiled files found stale or unreadable.",
		}),
		writes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "airwarn_loader_cache_writes_total",
			Help: "Compiled file writes, by result.",
		}, []string{"result"}),
		airspaces: f.NewCounterVec(prometheus.CounterOpts{
			Name: "airwarn_loader_airspaces_total",
			Help: "Airspaces loaded, by source.",
		}, []string{"source"}),
	}
}
