package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks income payment counters.
type Metrics struct {
	PaymentsRecorded  prometheus.Counter
	CompletionToggles prometheus.Counter
	AmountEdits       prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		PaymentsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_income_payments_recorded_total",
			Help: "Daily income payments recorded (including upserts)",
		}),
		CompletionToggles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_income_completion_toggles_total",
			Help: "Manual completion checkbox toggles",
		}),
		AmountEdits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_income_amount_edits_total",
			Help: "Paid amount edits on existing records",
		}),
	}
}
