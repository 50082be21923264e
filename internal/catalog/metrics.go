package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	listingsIndexed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lookali_listings_indexed",
			Help: "Number of listings currently in the spatial index.",
		},
	)

	reindexRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookali_reindex_runs_total",
			Help: "Full reindex runs by outcome.",
		},
		[]string{"status"},
	)
)
