// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics exposes the pipeline's runtime counters through
// prometheus/client_golang. The teacher only ever consumes a remote
// Prometheus as a query client (internal/metricdata/prometheus.go); this
// package is the pipeline acting as the thing being scraped instead, same
// library, opposite side of the wire.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every counter/gauge the pipeline reports. Fields are
// exported Prometheus metric handles, not raw numbers, so callers use the
// normal prometheus API (Inc, Add, Set, Observe) directly.
type Collector struct {
	registry *prometheus.Registry

	RecordsRead      prometheus.Counter
	CRCFailures      prometheus.Counter
	BatchesDelivered prometheus.Counter
	BatchesDropped   prometheus.Counter
	QueueDepth       prometheus.Gauge
	WorkerBusySeconds prometheus.Histogram
}

// NewCollector builds a Collector with its own registry, so multiple
// Loaders in the same process (e.g. in tests) don't collide on metric
// names in the default global registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		RecordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dareblopy_records_read_total",
			Help: "Records successfully decoded from container files.",
		}),
		CRCFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dareblopy_crc_failures_total",
			Help: "Frames rejected for a CRC mismatch or truncation.",
		}),
		BatchesDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dareblopy_batches_delivered_total",
			Help: "Batches handed to Loader.Get callers.",
		}),
		BatchesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dareblopy_batches_dropped_total",
			Help: "Batches discarded because Close was called before delivery.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dareblopy_queue_depth",
			Help: "Number of batches currently buffered in the loader queue.",
		}),
		WorkerBusySeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dareblopy_worker_busy_seconds",
			Help:    "Wall time a loader worker spends in one upstream.NextN + collate call.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.RecordsRead,
		c.CRCFailures,
		c.BatchesDelivered,
		c.BatchesDropped,
		c.QueueDepth,
		c.WorkerBusySeconds,
	)
	return c
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Noop is a Collector whose metrics are registered but never read by
// anything; components that take a *Collector use this as their default
// so metrics plumbing is unconditional rather than nil-checked everywhere.
func Noop() *Collector { return NewCollector() }
