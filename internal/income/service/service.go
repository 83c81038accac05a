package service

import (
	"context"
	"errors"
	"log/slog"

	"opsledger/internal/audit"
	incomemetrics "opsledger/internal/income/metrics"
	"opsledger/internal/income/models"
	workermodels "opsledger/internal/worker/models"
	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/platform/sentinel"
	"opsledger/pkg/requestcontext"
)

// IncomeStore persists income records. FindByWorkerAndDate backs the upsert
// path: at most one record exists per (worker, date).
type IncomeStore interface {
	Create(ctx context.Context, record *models.IncomeRecord) error
	Update(ctx context.Context, record *models.IncomeRecord) error
	FindByID(ctx context.Context, recordID id.IncomeRecordID) (*models.IncomeRecord, error)
	FindByWorkerAndDate(ctx context.Context, workerID id.WorkerID, date string) (*models.IncomeRecord, error)
	List(ctx context.Context, limit int) ([]*models.IncomeRecord, error)
}

// WorkerReader supplies the worker whose daily amount gets snapshotted.
type WorkerReader interface {
	FindByID(ctx context.Context, workerID id.WorkerID) (*workermodels.Worker, error)
}

// AuditRecorder appends entries to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Service orchestrates daily income tracking.
type Service struct {
	records       IncomeStore
	workers       WorkerReader
	logger        *slog.Logger
	auditRecorder AuditRecorder
	metrics       *incomemetrics.Metrics
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

func WithMetrics(m *incomemetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(records IncomeStore, workers WorkerReader, opts ...Option) *Service {
	s := &Service{records: records, workers: workers, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordPayment upserts the worker's record for the given date. The expected
// amount is snapshotted from the worker's current daily income amount, the
// paid amount replaces any earlier submission for that day, and completion is
// recomputed. Every submission gets its own audit entry even when it lands on
// an existing row.
func (s *Service) RecordPayment(ctx context.Context, workerID id.WorkerID, date string, paidAmount float64, notes string) (*models.IncomeRecord, error) {
	date, err := models.ParseDate(date)
	if err != nil {
		return nil, err
	}
	if paidAmount < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "paid amount must not be negative")
	}

	worker, err := s.workers.FindByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "worker not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load worker")
	}
	if !worker.IsActive() {
		return nil, dErrors.New(dErrors.CodeConflict, "worker is inactive")
	}

	actor := requestcontext.UserID(ctx).String()
	now := requestcontext.Now(ctx)

	record, err := s.records.FindByWorkerAndDate(ctx, workerID, date)
	switch {
	case err == nil:
		record.ApplyPayment(paidAmount, actor, now)
		if notes != "" {
			record.Notes = notes
		}
		if err := s.records.Update(ctx, record); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update income record")
		}
	case errors.Is(err, sentinel.ErrNotFound):
		record = &models.IncomeRecord{
			ID:             id.NewIncomeRecordID(),
			WorkerID:       workerID,
			Date:           date,
			ExpectedAmount: worker.DailyIncomeAmount,
			Notes:          notes,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		record.ApplyPayment(paidAmount, actor, now)
		if err := s.records.Create(ctx, record); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create income record")
		}
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load income record")
	}

	s.recordAudit(ctx, audit.Entry{
		Action:     audit.ActionPartialPaymentAdded,
		RecordType: audit.RecordTypeIncome,
		RecordID:   record.ID.String(),
		WorkerID:   workerID.String(),
		NewValue: audit.Snapshot{
			"paid_amount":  record.PaidAmount,
			"is_completed": record.IsCompleted,
		},
	})
	if s.metrics != nil {
		s.metrics.PaymentsRecorded.Inc()
	}
	return record, nil
}

// SetCompleted toggles the completion checkbox. Unchecking a completed record
// is admin-only. The paid amount is left untouched either way.
func (s *Service) SetCompleted(ctx context.Context, recordID id.IncomeRecordID, completed bool) (*models.IncomeRecord, error) {
	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, wrapIncomeErr(err)
	}

	if record.IsCompleted && !completed && requestcontext.Role(ctx) != string(audit.RoleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can uncheck completed payments")
	}
	if record.IsCompleted == completed {
		return record, nil
	}

	previous := record.IsCompleted
	record.SetCompleted(completed, requestcontext.UserID(ctx).String(), requestcontext.Now(ctx))
	if err := s.records.Update(ctx, record); err != nil {
		return nil, wrapIncomeErr(err)
	}

	action := audit.ActionFullCompletionChecked
	if !completed {
		action = audit.ActionCompletionUnchecked
	}
	s.recordAudit(ctx, audit.Entry{
		Action:        action,
		RecordType:    audit.RecordTypeIncome,
		RecordID:      record.ID.String(),
		WorkerID:      record.WorkerID.String(),
		PreviousValue: audit.Snapshot{"is_completed": previous},
		NewValue:      audit.Snapshot{"is_completed": completed},
	})
	if s.metrics != nil {
		s.metrics.CompletionToggles.Inc()
	}
	return record, nil
}

// EditAmount replaces the paid amount on an existing record. Editing a
// completed record is admin-only; completion is recomputed against the
// snapshotted expected amount.
func (s *Service) EditAmount(ctx context.Context, recordID id.IncomeRecordID, paidAmount float64) (*models.IncomeRecord, error) {
	if paidAmount < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "paid amount must not be negative")
	}

	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, wrapIncomeErr(err)
	}

	if record.IsCompleted && requestcontext.Role(ctx) != string(audit.RoleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can edit completed payments")
	}

	previous := record.PaidAmount
	record.ApplyPayment(paidAmount, requestcontext.UserID(ctx).String(), requestcontext.Now(ctx))
	if err := s.records.Update(ctx, record); err != nil {
		return nil, wrapIncomeErr(err)
	}

	s.recordAudit(ctx, audit.Entry{
		Action:        audit.ActionAmountEdited,
		RecordType:    audit.RecordTypeIncome,
		RecordID:      record.ID.String(),
		WorkerID:      record.WorkerID.String(),
		PreviousValue: audit.Snapshot{"paid_amount": previous},
		NewValue:      audit.Snapshot{"paid_amount": paidAmount},
	})
	if s.metrics != nil {
		s.metrics.AmountEdits.Inc()
	}
	return record, nil
}

// Get returns one income record.
func (s *Service) Get(ctx context.Context, recordID id.IncomeRecordID) (*models.IncomeRecord, error) {
	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, wrapIncomeErr(err)
	}
	return record, nil
}

// List returns records, most recent date first.
func (s *Service) List(ctx context.Context, limit int) ([]*models.IncomeRecord, error) {
	records, err := s.records.List(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list income records")
	}
	return records, nil
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

func wrapIncomeErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "income record not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "income store failure")
}
