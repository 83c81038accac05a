package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"opsledger/internal/audit"
	workermetrics "opsledger/internal/worker/metrics"
	"opsledger/internal/worker/models"
	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/platform/sentinel"
	"opsledger/pkg/requestcontext"
)

// WorkerStore persists worker profiles.
type WorkerStore interface {
	Create(ctx context.Context, worker *models.Worker) error
	FindByID(ctx context.Context, workerID id.WorkerID) (*models.Worker, error)
	Update(ctx context.Context, worker *models.Worker) error
	// Delete removes the worker and cascades their income and expense rows.
	Delete(ctx context.Context, workerID id.WorkerID) error
	List(ctx context.Context, onlyActive bool) ([]*models.Worker, error)
}

// AuditRecorder appends entries to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Service orchestrates worker management.
type Service struct {
	workers       WorkerStore
	logger        *slog.Logger
	auditRecorder AuditRecorder
	metrics       *workermetrics.Metrics
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

func WithMetrics(m *workermetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(workers WorkerStore, opts ...Option) *Service {
	s := &Service{workers: workers, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new worker. The route is admin-gated; created_by is the
// acting admin's user id.
func (s *Service) Create(ctx context.Context, name string, dailyIncomeAmount float64) (*models.Worker, error) {
	actor := requestcontext.UserID(ctx)
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	worker, err := models.NewWorker(id.NewWorkerID(), name, dailyIncomeAmount, actor.String(), requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.Message(err))
		}
		return nil, err
	}

	if err := s.workers.Create(ctx, worker); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create worker")
	}

	s.recordAudit(ctx, audit.Entry{
		Action:     audit.ActionWorkerCreated,
		RecordType: audit.RecordTypeWorker,
		RecordID:   worker.ID.String(),
		WorkerID:   worker.ID.String(),
		NewValue: audit.Snapshot{
			"name":                worker.Name,
			"daily_income_amount": worker.DailyIncomeAmount,
			"status":              string(worker.Status),
		},
	})
	if s.metrics != nil {
		s.metrics.WorkersCreated.Inc()
	}
	return worker, nil
}

// UpdateRequest carries optional profile changes; nil fields stay untouched.
type UpdateRequest struct {
	Name              *string
	DailyIncomeAmount *float64
}

// Update changes a worker's name and/or daily income amount. Any
// authenticated user may do this; the trail records who.
func (s *Service) Update(ctx context.Context, workerID id.WorkerID, req UpdateRequest) (*models.Worker, error) {
	worker, err := s.workers.FindByID(ctx, workerID)
	if err != nil {
		return nil, wrapWorkerErr(err)
	}

	previous := audit.Snapshot{}
	next := audit.Snapshot{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "worker name is required")
		}
		if len(name) > 128 {
			return nil, dErrors.New(dErrors.CodeValidation, "worker name must be at most 128 characters")
		}
		if name != worker.Name {
			previous["name"] = worker.Name
			next["name"] = name
			worker.Name = name
		}
	}
	if req.DailyIncomeAmount != nil {
		if *req.DailyIncomeAmount < 0 {
			return nil, dErrors.New(dErrors.CodeValidation, "daily income amount must not be negative")
		}
		if *req.DailyIncomeAmount != worker.DailyIncomeAmount {
			previous["daily_income_amount"] = worker.DailyIncomeAmount
			next["daily_income_amount"] = *req.DailyIncomeAmount
			worker.DailyIncomeAmount = *req.DailyIncomeAmount
		}
	}

	if len(next) == 0 {
		return worker, nil
	}

	worker.UpdatedAt = requestcontext.Now(ctx)
	if err := s.workers.Update(ctx, worker); err != nil {
		return nil, wrapWorkerErr(err)
	}

	s.recordAudit(ctx, audit.Entry{
		Action:        audit.ActionWorkerUpdated,
		RecordType:    audit.RecordTypeWorker,
		RecordID:      worker.ID.String(),
		WorkerID:      worker.ID.String(),
		PreviousValue: previous,
		NewValue:      next,
	})
	return worker, nil
}

// ToggleStatus flips a worker between active and inactive. Admin only.
func (s *Service) ToggleStatus(ctx context.Context, workerID id.WorkerID) (*models.Worker, error) {
	if requestcontext.Role(ctx) != string(audit.RoleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, "admin role required to change worker status")
	}

	worker, err := s.workers.FindByID(ctx, workerID)
	if err != nil {
		return nil, wrapWorkerErr(err)
	}

	previousStatus := worker.Status
	worker.Toggle(requestcontext.Now(ctx))
	if err := s.workers.Update(ctx, worker); err != nil {
		return nil, wrapWorkerErr(err)
	}

	s.recordAudit(ctx, audit.Entry{
		Action:        audit.ActionWorkerUpdated,
		RecordType:    audit.RecordTypeWorker,
		RecordID:      worker.ID.String(),
		WorkerID:      worker.ID.String(),
		PreviousValue: audit.Snapshot{"status": string(previousStatus)},
		NewValue:      audit.Snapshot{"status": string(worker.Status)},
	})
	if s.metrics != nil {
		s.metrics.StatusToggles.Inc()
	}
	return worker, nil
}

// Delete removes a worker and, via the store, their income and expense rows.
// The audit entry keeps the full prior record so the deletion is
// reconstructable from the trail alone. Admin-gated at the route.
func (s *Service) Delete(ctx context.Context, workerID id.WorkerID) error {
	worker, err := s.workers.FindByID(ctx, workerID)
	if err != nil {
		return wrapWorkerErr(err)
	}

	if err := s.workers.Delete(ctx, workerID); err != nil {
		return wrapWorkerErr(err)
	}

	s.recordAudit(ctx, audit.Entry{
		Action:        audit.ActionWorkerDeleted,
		RecordType:    audit.RecordTypeWorker,
		RecordID:      worker.ID.String(),
		WorkerID:      worker.ID.String(),
		PreviousValue: worker.Snapshot(),
	})
	if s.metrics != nil {
		s.metrics.WorkersDeleted.Inc()
	}
	return nil
}

// Get returns one worker.
func (s *Service) Get(ctx context.Context, workerID id.WorkerID) (*models.Worker, error) {
	worker, err := s.workers.FindByID(ctx, workerID)
	if err != nil {
		return nil, wrapWorkerErr(err)
	}
	return worker, nil
}

// List returns workers, optionally restricted to active ones (payment entry
// forms only offer active workers).
func (s *Service) List(ctx context.Context, onlyActive bool) ([]*models.Worker, error) {
	workers, err := s.workers.List(ctx, onlyActive)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list workers")
	}
	return workers, nil
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

func wrapWorkerErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "worker not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "worker store failure")
}
