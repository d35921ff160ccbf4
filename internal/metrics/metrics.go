// Package metrics defines Prometheus metrics for the portal.
//
// Metric naming follows Prometheus conventions:
//   - sphere_ prefix for all custom metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// BackendRequestsTotal counts backend API calls by method and status.
	// Status is the HTTP code or "error" for transport failures.
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphere_backend_requests_total",
			Help: "Total backend API requests by method and status.",
		},
		[]string{"method", "status"},
	)

	// BackendRequestDurationSeconds is a histogram of backend latency by method.
	BackendRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sphere_backend_request_duration_seconds",
			Help:    "Duration of backend API requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// GuardDecisionsTotal counts access guard outcomes.
	GuardDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphere_guard_decisions_total",
			Help: "Total access guard decisions by outcome.",
		},
		[]string{"outcome"},
	)

	// SessionInvalidationsTotal counts sessions dropped by reason.
	SessionInvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphere_session_invalidations_total",
			Help: "Total local sessions cleared, by reason.",
		},
		[]string{"reason"},
	)

	// LoginsTotal counts sign-in attempts by result.
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sphere_logins_total",
			Help: "Total sign-in attempts by result.",
		},
		[]string{"result"},
	)
)

// Registry holds the portal collectors; served on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		BackendRequestsTotal,
		BackendRequestDurationSeconds,
		GuardDecisionsTotal,
		SessionInvalidationsTotal,
		LoginsTotal,
		prometheus.NewGoCollector(),
	)
}

// RecordBackendRequest records one backend exchange.
func RecordBackendRequest(method, status string, d time.Duration) {
	BackendRequestsTotal.WithLabelValues(method, status).Inc()
	BackendRequestDurationSeconds.WithLabelValues(method).Observe(d.Seconds())
}

// RecordGuardDecision records a guard outcome ("authorized", "signin",
// "main_menu", "superseded").
func RecordGuardDecision(outcome string) {
	GuardDecisionsTotal.WithLabelValues(outcome).Inc()
}

// RecordSessionInvalidation records a local session clear ("logout",
// "unauthorized", "verify_failed").
func RecordSessionInvalidation(reason string) {
	SessionInvalidationsTotal.WithLabelValues(reason).Inc()
}

// RecordExpiredSessions records n sessions removed after their lifetime ran out.
func RecordExpiredSessions(n int64) {
	SessionInvalidationsTotal.WithLabelValues("expired").Add(float64(n))
}

// RecordLogin records a sign-in attempt ("success", "rejected", "error").
func RecordLogin(result string) {
	LoginsTotal.WithLabelValues(result).Inc()
}
