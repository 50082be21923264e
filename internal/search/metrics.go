package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookali_search_requests_total",
			Help: "Total number of search requests by sort mode and outcome.",
		},
		[]string{"sort_mode", "status"},
	)

	searchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lookali_search_duration_seconds",
			Help:    "Search request latency.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"sort_mode"},
	)

	searchCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lookali_search_candidates",
			Help:    "Number of geo candidates examined per search.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)
