// conflict/metrics.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package conflict

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	ticks    prometheus.Counter
	warnings *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		ticks: f.NewCounter(prometheus.CounterOpts{
			Name: "airwarn_conflict_ticks_total",
			Help: "Positions evaluated against the loaded airspaces.",
		}),
		warnings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "airwarn_conflict_warnings_total",
			Help: "Airspace warnings raised, by severity.",
		}, []string{"severity"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "airwarn_conflict_tick_seconds",
			Help:    "Time taken to evaluate one position.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15),
		}),
	}
}
