package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hrsync",
		Subsystem: "sync",
		Name:      "runs_total",
		Help:      "Total number of sync runs broken down by export and result.",
	}, []string{"export", "result"})

	syncRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hrsync",
		Subsystem: "sync",
		Name:      "rows_total",
		Help:      "Total number of employee or attendance rows broken down by export and outcome.",
	}, []string{"export", "outcome"})

	syncDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hrsync",
		Subsystem: "delivery",
		Name:      "uploads_total",
		Help:      "Total number of file transmissions broken down by destination and result.",
	}, []string{"destination", "result"})

	syncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hrsync",
		Subsystem: "sync",
		Name:      "run_duration_seconds",
		Help:      "Wall time of sync runs broken down by export.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	}, []string{"export"})
)

func recordRun(kind Kind, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	syncRuns.WithLabelValues(string(kind), result).Inc()
	syncDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

func recordRows(kind Kind, outcome string, n int) {
	if n <= 0 {
		return
	}
	syncRows.WithLabelValues(string(kind), outcome).Add(float64(n))
}

func recordDelivery(destination string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	syncDeliveries.WithLabelValues(destination, result).Inc()
}
