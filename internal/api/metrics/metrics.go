// Package metrics defines and registers all custom Prometheus metrics for
// the marketplace auth service. It is the single source of truth for metric
// names, labels, and help strings; metrics register with the default
// Prometheus registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace_auth"

// LoginAttemptsTotal counts credential-exchange outcomes.
// Label:
//   - outcome: "success", "invalid_credentials", "locked", or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// LoginDuration measures how long one credential exchange takes end-to-end,
// hash verification included.
var LoginDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "login_duration_seconds",
		Help:      "Duration of the credential exchange from request to response.",
		Buckets:   prometheus.DefBuckets,
	},
)

// LockoutsTotal counts failed attempts recorded at or beyond the lockout
// threshold.
var LockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockouts_total",
		Help:      "Total number of login failures recorded at or beyond the lockout threshold.",
	},
)

// InvitesRedeemedTotal counts invite redemption outcomes.
// Label:
//   - result: "redeemed", "not_found", "consumed", or "error"
var InvitesRedeemedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invites_redeemed_total",
		Help:      "Total number of invite redemption attempts, by result.",
	},
	[]string{"result"},
)

// TelemetryQueueDepth tracks the number of login attempts waiting in each
// lockout-recorder worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var TelemetryQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "telemetry_queue_depth",
		Help:      "Current number of login attempts pending in each recorder worker channel.",
	},
	[]string{"worker_id"},
)
