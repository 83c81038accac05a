package service

import (
	"context"
	"errors"
	"log/slog"

	"opsledger/internal/audit"
	expensemetrics "opsledger/internal/expense/metrics"
	"opsledger/internal/expense/models"
	workermodels "opsledger/internal/worker/models"
	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/platform/sentinel"
	"opsledger/pkg/requestcontext"
)

// ExpenseStore persists expenses.
type ExpenseStore interface {
	Create(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, expenseID id.ExpenseID) error
	FindByID(ctx context.Context, expenseID id.ExpenseID) (*models.Expense, error)
	List(ctx context.Context, limit int) ([]*models.Expense, error)
}

// WorkerReader verifies the worker an expense is attributed to.
type WorkerReader interface {
	FindByID(ctx context.Context, workerID id.WorkerID) (*workermodels.Worker, error)
}

// AuditRecorder appends entries to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Service orchestrates expense tracking.
type Service struct {
	expenses      ExpenseStore
	workers       WorkerReader
	logger        *slog.Logger
	auditRecorder AuditRecorder
	metrics       *expensemetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(s *Service) {
		s.auditRecorder = recorder
	}
}

func WithMetrics(m *expensemetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(expenses ExpenseStore, workers WorkerReader, opts ...Option) *Service {
	s := &Service{expenses: expenses, workers: workers, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest carries the fields for a new expense.
type CreateRequest struct {
	WorkerID          id.WorkerID
	Amount            float64
	Category          string
	Description       string
	ExpenseType       models.Type
	RecurrencePattern models.RecurrencePattern
	Date              string
}

// Create records a new unpaid expense against a worker.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Expense, error) {
	if _, err := s.workers.FindByID(ctx, req.WorkerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "worker not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load worker")
	}

	expense, err := models.NewExpense(
		id.NewExpenseID(), req.WorkerID, req.Amount, req.Category, req.Description,
		req.ExpenseType, req.RecurrencePattern, req.Date, requestcontext.Now(ctx),
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.Message(err))
		}
		return nil, err
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create expense")
	}

	s.recordAudit(ctx, audit.Entry{
		Action:     audit.ActionRecordCreated,
		RecordType: audit.RecordTypeExpense,
		RecordID:   expense.ID.String(),
		WorkerID:   expense.WorkerID.String(),
		NewValue: audit.Snapshot{
			"amount":       expense.Amount,
			"category":     expense.Category,
			"expense_type": string(expense.ExpenseType),
		},
	})
	if s.metrics != nil {
		s.metrics.ExpensesCreated.Inc()
	}
	return expense, nil
}

// SetPaid toggles the paid flag. Unmarking a paid expense is admin-only.
func (s *Service) SetPaid(ctx context.Context, expenseID id.ExpenseID, paid bool) (*models.Expense, error) {
	expense, err := s.expenses.FindByID(ctx, expenseID)
	if err != nil {
		return nil, wrapExpenseErr(err)
	}

	if expense.IsPaid && !paid && requestcontext.Role(ctx) != string(audit.RoleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can unmark paid expenses")
	}
	if expense.IsPaid == paid {
		return expense, nil
	}

	previous := expense.IsPaid
	expense.SetPaid(paid, requestcontext.UserID(ctx).String(), requestcontext.Now(ctx))
	if err := s.expenses.Update(ctx, expense); err != nil {
		return nil, wrapExpenseErr(err)
	}

	action := audit.ActionExpenseMarkedPaid
	if !paid {
		action = audit.ActionExpenseMarkedUnpaid
	}
	s.recordAudit(ctx, audit.Entry{
		Action:        action,
		RecordType:    audit.RecordTypeExpense,
		RecordID:      expense.ID.String(),
		WorkerID:      expense.WorkerID.String(),
		PreviousValue: audit.Snapshot{"is_paid": previous},
		NewValue:      audit.Snapshot{"is_paid": paid},
	})
	if s.metrics != nil {
		s.metrics.PaidToggles.Inc()
	}
	return expense, nil
}

// Delete removes an expense. The audit entry keeps the full prior record so
// the trail alone can reconstruct what was removed.
func (s *Service) Delete(ctx context.Context, expenseID id.ExpenseID) error {
	expense, err := s.expenses.FindByID(ctx, expenseID)
	if err != nil {
		return wrapExpenseErr(err)
	}

	if err := s.expenses.Delete(ctx, expenseID); err != nil {
		return wrapExpenseErr(err)
	}

	s.recordAudit(ctx, audit.Entry{
		Action:        audit.ActionRecordDeleted,
		RecordType:    audit.RecordTypeExpense,
		RecordID:      expense.ID.String(),
		WorkerID:      expense.WorkerID.String(),
		PreviousValue: expense.Snapshot(),
	})
	if s.metrics != nil {
		s.metrics.ExpensesDeleted.Inc()
	}
	return nil
}

// Get returns one expense.
func (s *Service) Get(ctx context.Context, expenseID id.ExpenseID) (*models.Expense, error) {
	expense, err := s.expenses.FindByID(ctx, expenseID)
	if err != nil {
		return nil, wrapExpenseErr(err)
	}
	return expense, nil
}

// List returns expenses, most recent date first.
func (s *Service) List(ctx context.Context, limit int) ([]*models.Expense, error) {
	expenses, err := s.expenses.List(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expenses")
	}
	return expenses, nil
}

func (s *Service) recordAudit(ctx context.Context, entry audit.Entry) {
	if s.auditRecorder == nil {
		return
	}
	entry.PerformedBy = requestcontext.UserID(ctx).String()
	entry.PerformedByRole = audit.Role(requestcontext.Role(ctx))
	if err := s.auditRecorder.Record(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "audit entry rejected",
			"error", err,
			"action", string(entry.Action),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func wrapExpenseErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "expense not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "expense store failure")
}
