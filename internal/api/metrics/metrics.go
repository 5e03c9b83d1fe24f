// Package metrics defines the custom Prometheus metrics of the validation API.
// It is the single source of truth for metric names, labels, and help strings.
//
// Collectors are registered on the Registerer handed to New so tests can use
// a fresh registry per case.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsproof"

type Metrics struct {
	AuthAttempts     *prometheus.CounterVec
	SessionLookups   *prometheus.CounterVec
	SessionsRevoked  prometheus.Counter
	Analyses         *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// ── Auth metrics ──────────────────────────────────────────────────────

		// Labels:
		//   - action: "register" or "login"
		//   - result: "success", "duplicate", "invalid_credentials", "throttled", "invalid_input", "error"
		AuthAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Register and login attempts by outcome.",
			},
			[]string{"action", "result"},
		),

		// Label:
		//   - result: "authenticated", "anonymous" or "error"
		SessionLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_lookups_total",
				Help:      "Session cookie lookups by outcome.",
			},
			[]string{"result"},
		),

		SessionsRevoked: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_revoked_total",
			Help:      "Sessions revoked by logout or re-login.",
		}),

		// ── Validation metrics ────────────────────────────────────────────────

		// Label:
		//   - result: classification tone on success, otherwise "invalid_input", "gateway_error" or "error"
		Analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Text analyses by outcome.",
			},
			[]string{"result"},
		),

		AnalysisDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Duration of analyze requests including the gateway call.",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
			},
			[]string{"result"},
		),
	}
}
