package hrapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hrisRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hrsync",
		Subsystem: "hris",
		Name:      "requests_total",
		Help:      "Total number of HR API listing requests broken down by endpoint and result.",
	}, []string{"endpoint", "result"})

	hrisRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hrsync",
		Subsystem: "hris",
		Name:      "retries_total",
		Help:      "Total number of HR API retries broken down by reason.",
	}, []string{"reason"})

	hrisTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hrsync",
		Subsystem: "hris",
		Name:      "token_requests_total",
		Help:      "Total number of client-credentials exchanges broken down by result.",
	}, []string{"result"})
)

func recordPage(endpoint, result string) {
	hrisRequests.WithLabelValues(endpoint, result).Inc()
}

func recordRetry(reason string) {
	hrisRetries.WithLabelValues(reason).Inc()
}

func recordToken(result string) {
	hrisTokens.WithLabelValues(result).Inc()
}
