package rpcclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for outgoing RPC requests, labelled by JSON-RPC method.
var (
	requestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of sent RPC requests",
			Name:      "requests_total",
			Namespace: "citago",
			Subsystem: "rpcclient",
		},
		[]string{"method"},
	)
	failuresCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of failed RPC requests (transport or decoding errors)",
			Name:      "failures_total",
			Namespace: "citago",
			Subsystem: "rpcclient",
		},
		[]string{"method"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Help:      "RPC request round trip time",
			Name:      "request_duration_seconds",
			Namespace: "citago",
			Subsystem: "rpcclient",
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(
		requestsCounter,
		failuresCounter,
		requestDuration,
	)
}

func addRequestMetrics(method string, d time.Duration, err error) {
	requestsCounter.WithLabelValues(method).Inc()
	requestDuration.WithLabelValues(method).Observe(d.Seconds())
	if err != nil {
		failuresCounter.WithLabelValues(method).Inc()
	}
}
