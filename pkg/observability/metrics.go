// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the crucible verification service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// SandboxBuckets defines histogram buckets suited for sandboxed test runs,
// ranging from 50ms to the 300s maximum timeout.
var SandboxBuckets = []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300}

// AttemptBuckets covers the small attempt counts of a bounded correction loop.
var AttemptBuckets = []float64{1, 2, 3, 4, 5}

var (
	// VerificationsTotal counts sandbox executions by outcome status.
	VerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crucible_verifications_total",
			Help: "Total sandbox verifications",
		},
		[]string{"status"},
	)

	// VerificationDuration records sandbox execution wall time in seconds.
	VerificationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crucible_verification_duration_seconds",
			Help:    "Sandbox execution duration",
			Buckets: SandboxBuckets,
		},
		[]string{"status"},
	)

	// CorrectionsTotal counts completed correction loops by terminal status.
	CorrectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crucible_corrections_total",
			Help: "Completed correction loops",
		},
		[]string{"final_status"},
	)

	// CorrectionAttempts records how many attempts each correction loop used.
	CorrectionAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crucible_correction_attempts",
			Help:    "Attempts consumed per correction loop",
			Buckets: AttemptBuckets,
		},
	)

	// WorkspacesActive tracks the number of live (unreleased) workspaces.
	WorkspacesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "crucible_workspaces_active",
			Help: "Active workspaces",
		},
	)

	// WorkspaceCleanupFailures counts workspace removals that failed.
	// Cleanup failures are logged, never propagated, so this counter is
	// the only aggregate signal that workspaces are leaking.
	WorkspaceCleanupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crucible_workspace_cleanup_failures_total",
			Help: "Failed workspace removals",
		},
	)

	// RequestsTotal counts all HTTP requests by method, status class, and path.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crucible_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status", "path"},
	)

	// RequestDuration records HTTP request duration in seconds by method and path.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crucible_request_duration_seconds",
			Help:    "Request duration",
			Buckets: SandboxBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		VerificationsTotal,
		VerificationDuration,
		CorrectionsTotal,
		CorrectionAttempts,
		WorkspacesActive,
		WorkspaceCleanupFailures,
		RequestsTotal,
		RequestDuration,
	)
}
