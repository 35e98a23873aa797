// Package metrics holds Prometheus instruments that are used across the
// server.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MirrorSyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirror_sync_total",
			Help: "Cumulative number of successful git mirror syncs.",
		}, []string{"environment"})

	MirrorSyncErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirror_sync_errors_total",
			Help: "Cumulative number of failed git mirror syncs.",
		}, []string{"environment"})

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Cumulative number of handled requests by route class.",
		}, []string{"route"})

	AssembleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assemble_duration_seconds",
			Help:    "Time spent assembling one merged property map.",
			Buckets: prometheus.DefBuckets,
		})
)

func init() {
	prometheus.MustRegister(
		MirrorSyncTotal,
		MirrorSyncErrorsTotal,
		RequestsTotal,
		AssembleDuration,
	)
}
