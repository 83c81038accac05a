package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks expense counters.
type Metrics struct {
	ExpensesCreated prometheus.Counter
	ExpensesDeleted prometheus.Counter
	PaidToggles     prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ExpensesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_expenses_created_total",
			Help: "Expenses created",
		}),
		ExpensesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_expenses_deleted_total",
			Help: "Expenses deleted",
		}),
		PaidToggles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "opsledger_expense_paid_toggles_total",
			Help: "Expense paid/unpaid toggles",
		}),
	}
}
