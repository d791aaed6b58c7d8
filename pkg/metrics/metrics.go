// Package metrics holds the prometheus collectors shared by the client packages.
// Collectors register with the default registry on import.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "replicate",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of API requests issued",
		},
		[]string{"method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "replicate",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	PollsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "replicate",
			Subsystem: "prediction",
			Name:      "polls_total",
			Help:      "Total number of prediction status polls",
		},
	)

	PredictionsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "replicate",
			Subsystem: "prediction",
			Name:      "finished_total",
			Help:      "Predictions observed in a terminal status",
		},
		[]string{"status"},
	)

	VersionFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "replicate",
			Subsystem: "resolver",
			Name:      "version_fallbacks_total",
			Help:      "Requested model versions that were not found and fell back to the latest",
		},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, RequestDuration, PollsTotal, PredictionsFinished, VersionFallbacks)
}

// ObserveRequest records one completed API request. status is 0 when
// no response was received.
func ObserveRequest(method string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	RequestsTotal.WithLabelValues(method, label).Inc()
	RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}
