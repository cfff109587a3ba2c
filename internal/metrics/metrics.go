// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Generations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_generations_total",
			Help: "Feature generations by outcome",
		},
		[]string{"feature", "status"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_generation_duration_seconds",
			Help:    "Duration of a feature generation including the image job",
			Buckets: []float64{.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"feature"},
	)

	ImagePolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_image_polls_total",
			Help: "Image job status polls by observed state",
		},
		[]string{"state"},
	)

	LedgerOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_ledger_operations_total",
			Help: "Token ledger operations",
		},
		[]string{"operation", "status"},
	)

	Payments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_payments_total",
			Help: "Payment resolutions",
		},
		[]string{"package", "status"},
	)
)
