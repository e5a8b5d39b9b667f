// Package metrics defines and registers the Prometheus metrics of the student
// directory. Metrics are registered with the default registry on import and
// exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "studentdir"

// Outcome label values shared by the enrollment counters
const (
	OutcomeSuccess = "success"
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - outcome: "success" or the error kind (e.g. "duplicate_username", "storage")
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of student registration attempts, by outcome.",
	},
	[]string{"outcome"},
)

// LoginsTotal counts login attempts.
// Label:
//   - outcome: "success" or the error kind (e.g. "unauthorized")
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// MatricAssignmentsTotal counts matriculation assignment attempts made by the allocator.
// Label:
//   - outcome: "success" or the error kind (e.g. "assignment_conflict")
var MatricAssignmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matric_assignments_total",
		Help:      "Total number of matriculation number allocations, by outcome.",
	},
	[]string{"outcome"},
)

// ProfileCacheLookupsTotal counts profile cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var ProfileCacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_cache_lookups_total",
		Help:      "Total number of profile cache lookups by matric number, by result.",
	},
	[]string{"result"},
)

// HTTPRequestDuration measures request latency per route.
// Labels:
//   - method: HTTP method
//   - route: the matched route template (e.g. "/students/:username/matric")
//   - status: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)
