// Package metrics exposes Prometheus counters for the audit trail.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntriesRecorded counts successfully appended entries by action.
	EntriesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opsledger_audit_entries_total",
		Help: "Audit entries appended, by action",
	}, []string{"action"})

	// AppendFailures counts store failures that were swallowed. A non-zero
	// rate means the trail is losing entries while mutations keep succeeding.
	AppendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opsledger_audit_append_failures_total",
		Help: "Audit store append failures (swallowed, primary mutation unaffected)",
	})

	// Dropped counts entries discarded because the async buffer was full.
	Dropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opsledger_audit_dropped_total",
		Help: "Audit entries dropped due to a full async buffer",
	})

	// SinkFailures counts failed publishes to the Kafka mirror.
	SinkFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opsledger_audit_sink_failures_total",
		Help: "Audit mirror publish failures (best-effort, swallowed)",
	})
)
