// Package metrics exposes Prometheus instrumentation for ingestion and
// report serving.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsIngested counts accepted session records.
	SessionsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attrify",
		Name:      "sessions_ingested_total",
		Help:      "Number of session records accepted by the public API.",
	})

	// ConversionsIngested counts accepted conversion events.
	ConversionsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attrify",
		Name:      "conversions_ingested_total",
		Help:      "Number of conversion events accepted by the public API.",
	})

	// ReportRequests counts attribution report requests by model.
	ReportRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attrify",
		Name:      "report_requests_total",
		Help:      "Number of attribution report requests, labeled by model.",
	}, []string{"model"})

	// ReportDuration observes end-to-end report build latency.
	ReportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "attrify",
		Name:      "report_duration_seconds",
		Help:      "Time spent fetching data and building an attribution report.",
		Buckets:   prometheus.DefBuckets,
	})
)
