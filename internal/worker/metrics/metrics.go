package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks worker lifecycle counters.
type Metrics struct {
	WorkersCreated prometheus.Counter
	WorkersDeleted prometheus.Counter
	StatusToggles  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		WorkersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_workers_created_total",
			Help: "Workers created",
		}),
		WorkersDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_workers_deleted_total",
			Help: "Workers deleted",
		}),
		StatusToggles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_worker_status_toggles_total",
			Help: "Worker status toggles",
		}),
	}
}
