package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comedy_cache_lookups_total",
			Help: "Cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
	upstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comedy_upstream_calls_total",
			Help: "Calls to external providers by outcome",
		},
		[]string{"provider", "outcome"},
	)
	pipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "comedy_pipeline_duration_seconds",
			Help:    "End-to-end duration of an uncached find request",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"mode"},
	)
)

// RegisterMetrics registers the pipeline collectors. Call once from main.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(cacheLookups, upstreamCalls, pipelineDuration)
}

func observeUpstream(provider string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	upstreamCalls.WithLabelValues(provider, outcome).Inc()
}
