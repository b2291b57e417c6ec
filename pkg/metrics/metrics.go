package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accountd_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// Registrations counts registration requests by outcome
	// (token_issued|validation_error|duplicate_email|notification_failed).
	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accountd_registrations_total",
			Help: "Total number of registration requests",
		},
		[]string{"outcome"},
	)

	// Activations counts activation attempts by outcome
	// (created|token_rejected|duplicate_email).
	Activations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accountd_activations_total",
			Help: "Total number of account activation attempts",
		},
		[]string{"outcome"},
	)

	// PasswordResets counts completed and failed password reset attempts.
	PasswordResets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accountd_password_resets_total",
			Help: "Total number of password reset completions",
		},
		[]string{"outcome"},
	)

	// ActiveSessions tracks sessions that are neither expired nor revoked.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "accountd_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accountd_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
