// Package metrics defines the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Allocations counts allocation computations served over RPC.
	Allocations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "billsplit",
		Name:      "allocations_total",
		Help:      "Number of allocation computations.",
	})

	// Renders counts summary images rendered, labelled by whether a QR was supplied.
	Renders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "billsplit",
		Name:      "renders_total",
		Help:      "Number of summary images rendered.",
	}, []string{"qr"})

	// QRFailures counts QR images that could not be loaded or decoded.
	QRFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "billsplit",
		Name:      "qr_decode_failures_total",
		Help:      "Number of QR images that failed to decode.",
	})

	// Exports counts export attempts by kind and status.
	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "billsplit",
		Name:      "exports_total",
		Help:      "Number of export attempts.",
	}, []string{"kind", "status"})

	// ExportDuration observes how long an export took, render included.
	ExportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "billsplit",
		Name:      "export_duration_seconds",
		Help:      "Export latency including rendering.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	// Sessions tracks live sessions.
	Sessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "billsplit",
		Name:      "sessions",
		Help:      "Number of live sessions.",
	})
)
