// Package service aggregates the dashboard summary figures.
package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	expensemodels "opsledger/internal/expense/models"
	incomemodels "opsledger/internal/income/models"
	workermodels "opsledger/internal/worker/models"
	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/requestcontext"
)

// WorkerReader lists workers for the active headcount.
type WorkerReader interface {
	List(ctx context.Context, onlyActive bool) ([]*workermodels.Worker, error)
}

// IncomeReader runs the windowed income queries. Empty bounds are unbounded.
type IncomeReader interface {
	ListByDateRange(ctx context.Context, from, to string) ([]*incomemodels.IncomeRecord, error)
}

// ExpenseReader runs the windowed expense queries.
type ExpenseReader interface {
	ListByDateRange(ctx context.Context, from, to string) ([]*expensemodels.Expense, error)
}

// Summary holds the aggregated dashboard figures. Expense sums only count
// paid expenses; outstanding dues sum the positive remaining balances across
// all income records.
type Summary struct {
	ActiveWorkers   int     `json:"active_workers"`
	TotalIncome     float64 `json:"total_income"`
	TotalExpenses   float64 `json:"total_expenses"`
	NetProfit       float64 `json:"net_profit"`
	OutstandingDues float64 `json:"outstanding_dues"`
	TodayIncome     float64 `json:"today_income"`
	TodayExpenses   float64 `json:"today_expenses"`
	WeekIncome      float64 `json:"week_income"`
	WeekExpenses    float64 `json:"week_expenses"`
	MonthIncome     float64 `json:"month_income"`
	MonthExpenses   float64 `json:"month_expenses"`
}

// Service computes the read-only dashboard summary. No audit entries are
// written here.
type Service struct {
	workers  WorkerReader
	income   IncomeReader
	expenses ExpenseReader
	logger   *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service.
func New(workers WorkerReader, income IncomeReader, expenses ExpenseReader, opts ...Option) *Service {
	s := &Service{workers: workers, income: income, expenses: expenses, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize computes the figures relative to the request time. The week runs
// Sunday through Saturday, the month is the calendar month. The windowed
// queries run concurrently; the first failure cancels the rest.
func (s *Service) Summarize(ctx context.Context) (*Summary, error) {
	now := requestcontext.Now(ctx)
	today := now.Format(incomemodels.DateLayout)
	weekStart, weekEnd := weekBounds(now)
	monthStart, monthEnd := monthBounds(now)

	var (
		workers                            []*workermodels.Worker
		allIncome, weekIncome, monthIncome []*incomemodels.IncomeRecord
		todayIncome                        []*incomemodels.IncomeRecord
		allExpenses, weekExpenses          []*expensemodels.Expense
		todayExpenses, monthExpenses       []*expensemodels.Expense
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		workers, err = s.workers.List(gctx, true)
		return err
	})
	g.Go(func() (err error) {
		allIncome, err = s.income.ListByDateRange(gctx, "", "")
		return err
	})
	g.Go(func() (err error) {
		todayIncome, err = s.income.ListByDateRange(gctx, today, today)
		return err
	})
	g.Go(func() (err error) {
		weekIncome, err = s.income.ListByDateRange(gctx, weekStart, weekEnd)
		return err
	})
	g.Go(func() (err error) {
		monthIncome, err = s.income.ListByDateRange(gctx, monthStart, monthEnd)
		return err
	})
	g.Go(func() (err error) {
		allExpenses, err = s.expenses.ListByDateRange(gctx, "", "")
		return err
	})
	g.Go(func() (err error) {
		todayExpenses, err = s.expenses.ListByDateRange(gctx, today, today)
		return err
	})
	g.Go(func() (err error) {
		weekExpenses, err = s.expenses.ListByDateRange(gctx, weekStart, weekEnd)
		return err
	})
	g.Go(func() (err error) {
		monthExpenses, err = s.expenses.ListByDateRange(gctx, monthStart, monthEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dashboard figures")
	}

	summary := &Summary{
		ActiveWorkers: len(workers),
		TodayIncome:   sumPaid(todayIncome),
		WeekIncome:    sumPaid(weekIncome),
		MonthIncome:   sumPaid(monthIncome),
		TodayExpenses: sumPaidExpenses(todayExpenses),
		WeekExpenses:  sumPaidExpenses(weekExpenses),
		MonthExpenses: sumPaidExpenses(monthExpenses),
	}
	summary.TotalIncome = sumPaid(allIncome)
	summary.TotalExpenses = sumPaidExpenses(allExpenses)
	for _, record := range allIncome {
		summary.OutstandingDues += record.RemainingBalance()
	}
	summary.NetProfit = summary.TotalIncome - summary.TotalExpenses
	return summary, nil
}

func sumPaid(records []*incomemodels.IncomeRecord) float64 {
	var sum float64
	for _, record := range records {
		sum += record.PaidAmount
	}
	return sum
}

func sumPaidExpenses(expenses []*expensemodels.Expense) float64 {
	var sum float64
	for _, expense := range expenses {
		if expense.IsPaid {
			sum += expense.Amount
		}
	}
	return sum
}

func weekBounds(now time.Time) (string, string) {
	start := now.AddDate(0, 0, -int(now.Weekday()))
	end := start.AddDate(0, 0, 6)
	return start.Format(incomemodels.DateLayout), end.Format(incomemodels.DateLayout)
}

func monthBounds(now time.Time) (string, string) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, -1)
	return start.Format(incomemodels.DateLayout), end.Format(incomemodels.DateLayout)
}
