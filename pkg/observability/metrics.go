// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the gatehouse API.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LookupBuckets defines histogram buckets suited for user store lookups,
// ranging from 1ms to 5s.
var LookupBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5}

var (
	// RequestsTotal counts all HTTP requests by method, route, and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatehouse_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RequestsInFlight tracks the number of requests currently being served.
	RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatehouse_requests_in_flight",
			Help: "Requests in flight",
		},
	)

	// AuthDecisionsTotal counts gate outcomes: authenticated, unauthorized,
	// forbidden, error.
	AuthDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_auth_decisions_total",
			Help: "Authentication and authorization decisions",
		},
		[]string{"outcome"},
	)

	// UserLookupDuration records how long the user store takes to resolve
	// a token subject.
	UserLookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gatehouse_user_lookup_duration_seconds",
			Help:    "User store lookup latency",
			Buckets: LookupBuckets,
		},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gatehouse_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		RequestsInFlight,
		AuthDecisionsTotal,
		UserLookupDuration,
		RateLimitRejectedTotal,
	)
}
