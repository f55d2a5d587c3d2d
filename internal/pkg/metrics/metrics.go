// Package metrics defines the custom Prometheus metrics of the dog-walk
// service. Every metric is registered with the default registry through
// promauto when the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dogwalk"

// ── Matching metrics ──────────────────────────────────────────────────────────

// WalkRequestsCreatedTotal counts walk requests posted by owners.
var WalkRequestsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "walk_requests_created_total",
		Help:      "Total number of walk requests created.",
	},
)

// ApplicationsTotal counts walker applications.
// Label:
//   - result: "accepted" or "conflict"
var ApplicationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_total",
		Help:      "Total number of walker applications, by result.",
	},
	[]string{"result"},
)

// TransitionsTotal counts owner-driven status transitions.
// Label:
//   - to: the status the request moved to ("completed", "cancelled")
var TransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Total number of walk request transitions, by target status.",
	},
	[]string{"to"},
)

// ── Event log metrics ─────────────────────────────────────────────────────────

// EventsPersistedTotal counts walk events written to the event log.
// Label:
//   - result: "ok" or "error"
var EventsPersistedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_persisted_total",
		Help:      "Total number of walk events persisted, by result.",
	},
	[]string{"result"},
)

// EventsQueueDepth tracks the number of events waiting in each worker channel.
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsTotal counts logins and logouts.
var SessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_total",
		Help:      "Total number of session lifecycle actions, by action.",
	},
	[]string{"action"},
)
