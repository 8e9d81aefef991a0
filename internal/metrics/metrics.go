// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provider fetch outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeSkipped   = "skipped"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
)

var (
	// HTTPRequestsTotal counts inbound requests by route pattern, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of http requests handled by the service.",
		},
		[]string{"path", "method", "code"},
	)

	// ProviderFetchTotal counts adapter calls by source and outcome.
	ProviderFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_fetch_total",
			Help: "Total number of upstream job provider fetches.",
		},
		[]string{"source", "outcome"},
	)

	ProviderFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_fetch_duration_seconds",
			Help:    "Latency of upstream job provider fetches.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"source"},
	)

	// ProviderProbeListings is the listing count seen by the last scheduled probe.
	ProviderProbeListings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "provider_probe_listings",
			Help: "Number of listings returned by the last availability probe.",
		},
		[]string{"source"},
	)

	LiveJobsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "live_jobs_returned",
			Help:    "Number of live jobs returned per request after filtering and capping.",
			Buckets: []float64{0, 1, 5, 10, 20, 30, 40},
		},
	)
)
