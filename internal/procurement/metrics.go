package procurement

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procurement_api_requests_total",
			Help: "Requests sent to the procurement API by endpoint and outcome",
		},
		[]string{"method", "endpoint", "outcome"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "procurement_api_request_duration_seconds",
			Help:    "Latency of procurement API requests including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "procurement_api_circuit_breaker_state",
			Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, breakerState)
}

func observe(cl call, outcome string, start time.Time) {
	requestsTotal.WithLabelValues(cl.method, cl.endpoint, outcome).Inc()
	requestDuration.WithLabelValues(cl.method, cl.endpoint).Observe(time.Since(start).Seconds())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
