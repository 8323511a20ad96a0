// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package metrics defines the Prometheus collectors the engine updates.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors groups every metric of one engine instance. A nil
// *Collectors is valid and records nothing.
type Collectors struct {
	FilesScanned     *prometheus.CounterVec
	FilesSkipped     *prometheus.CounterVec
	ParseAnomalies   *prometheus.CounterVec
	SearchDuration   *prometheus.HistogramVec
	ContextBytes     prometheus.Histogram
	DetectionRefresh prometheus.Counter
}

// New registers the collectors on reg. A nil reg creates unregistered
// collectors, which is useful in tests.
func New(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		FilesScanned: f.NewCounterVec(prometheus.CounterOpts{
			Name: "codeassist_files_scanned_total",
			Help: "Files read by a search or grep, by operation.",
		}, []string{"operation"}),
		FilesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "codeassist_files_skipped_total",
			Help: "Files skipped while scanning, by diagnostic kind.",
		}, []string{"reason"}),
		ParseAnomalies: f.NewCounterVec(prometheus.CounterOpts{
			Name: "codeassist_parse_anomalies_total",
			Help: "Structural anomalies reported by the parser, by language.",
		}, []string{"language"}),
		SearchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "codeassist_search_seconds",
			Help:    "Time spent in a search or grep pass.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		ContextBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "codeassist_context_bytes",
			Help:    "Size of assembled context packages.",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 10),
		}),
		DetectionRefresh: f.NewCounter(prometheus.CounterOpts{
			Name: "codeassist_detection_refresh_total",
			Help: "Project feature detections computed.",
		}),
	}
}

// Scanned counts files read by op.
func (c *Collectors) Scanned(op string, n int) {
	if c == nil {
		return
	}
	c.FilesScanned.WithLabelValues(op).Add(float64(n))
}

// Skipped counts one skipped file.
func (c *Collectors) Skipped(reason string) {
	if c == nil {
		return
	}
	c.FilesSkipped.WithLabelValues(reason).Inc()
}

// Anomalies counts parse anomalies for a language.
func (c *Collectors) Anomalies(language string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.ParseAnomalies.WithLabelValues(language).Add(float64(n))
}

// ObserveSearch records the duration of op started at start.
func (c *Collectors) ObserveSearch(op string, start time.Time) {
	if c == nil {
		return
	}
	c.SearchDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveContext records the size of an assembled package.
func (c *Collectors) ObserveContext(bytes int) {
	if c == nil {
		return
	}
	c.ContextBytes.Observe(float64(bytes))
}

// Refreshed counts one detection.
func (c *Collectors) Refreshed() {
	if c == nil {
		return
	}
	c.DetectionRefresh.Inc()
}
