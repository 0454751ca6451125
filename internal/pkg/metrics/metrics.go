package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fillgate_settlements_total",
		Help: "The total number of settlement attempts",
	}, []string{"status", "order_type"})

	ResolveFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fillgate_resolve_failures_total",
		Help: "Total order resolution failures",
	}, []string{"reason"})

	BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fillgate_batch_size",
		Help:    "Orders per settlement batch",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fillgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	NonceConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fillgate_nonce_conflicts_total",
		Help: "Settlements rejected because the nonce was already consumed",
	})
)
