package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"opsledger/internal/audit"
	auditmemory "opsledger/internal/audit/store/memory"
	"opsledger/internal/income/store"
	workermodels "opsledger/internal/worker/models"
	workerstore "opsledger/internal/worker/store"
	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/requestcontext"
)

type IncomeServiceSuite struct {
	suite.Suite
	records    *store.InMemory
	workers    *workerstore.InMemory
	auditStore *auditmemory.InMemoryStore
	service    *Service
	worker     *workermodels.Worker
	adminID    id.UserID
	userID     id.UserID
}

func (s *IncomeServiceSuite) SetupTest() {
	s.records = store.NewInMemory()
	s.workers = workerstore.NewInMemory()
	s.auditStore = auditmemory.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := audit.NewRecorder(s.auditStore, audit.WithLogger(logger))
	s.service = New(s.records, s.workers, WithLogger(logger), WithAuditRecorder(recorder))
	s.adminID = id.NewUserID()
	s.userID = id.NewUserID()

	worker, err := workermodels.NewWorker(id.NewWorkerID(), "Ana", 500, s.adminID.String(), time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.workers.Create(context.Background(), worker))
	s.worker = worker
}

func TestIncomeServiceSuite(t *testing.T) {
	suite.Run(t, new(IncomeServiceSuite))
}

func (s *IncomeServiceSuite) ctxFor(userID id.UserID, role string) context.Context {
	ctx := requestcontext.WithUserID(context.Background(), userID)
	ctx = requestcontext.WithRole(ctx, role)
	return requestcontext.WithTime(ctx, time.Date(2026, 6, 2, 14, 0, 0, 0, time.UTC))
}

func (s *IncomeServiceSuite) auditEntries() []audit.Entry {
	entries, err := s.auditStore.List(context.Background(), audit.Query{})
	s.Require().NoError(err)
	return entries
}

func (s *IncomeServiceSuite) TestRecordPayment() {
	s.Run("partial payment leaves the record incomplete", func() {
		record, err := s.service.RecordPayment(s.ctxFor(s.userID, "user"), s.worker.ID, "2026-06-02", 200, "")
		s.Require().NoError(err)
		s.Equal(500.0, record.ExpectedAmount)
		s.Equal(200.0, record.PaidAmount)
		s.False(record.IsCompleted)
		s.Equal(300.0, record.RemainingBalance())
		s.Nil(record.CompletedAt)
	})

	s.Run("payment at the exact expected amount completes", func() {
		record, err := s.service.RecordPayment(s.ctxFor(s.userID, "user"), s.worker.ID, "2026-06-03", 500, "")
		s.Require().NoError(err)
		s.True(record.IsCompleted)
		s.Equal(0.0, record.RemainingBalance())
		s.Require().NotNil(record.CompletedAt)
		s.Equal(s.userID.String(), record.CompletedBy)
	})

	s.Run("a cent short stays incomplete", func() {
		record, err := s.service.RecordPayment(s.ctxFor(s.userID, "user"), s.worker.ID, "2026-06-04", 499.99, "")
		s.Require().NoError(err)
		s.False(record.IsCompleted)
	})

	s.Run("overpayment completes with zero balance", func() {
		record, err := s.service.RecordPayment(s.ctxFor(s.userID, "user"), s.worker.ID, "2026-06-05", 600, "")
		s.Require().NoError(err)
		s.True(record.IsCompleted)
		s.Equal(0.0, record.RemainingBalance())
	})

	s.Run("rejects negative amount", func() {
		_, err := s.service.RecordPayment(s.ctxFor(s.userID, "user"), s.worker.ID, "2026-06-06", -5, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects malformed date", func() {
		_, err := s.service.RecordPayment(s.ctxFor(s.userID, "user"), s.worker.ID, "06/02/2026", 100, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects unknown worker", func() {
		_, err := s.service.RecordPayment(s.ctxFor(s.userID, "user"), id.NewWorkerID(), "2026-06-02", 100, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects inactive worker", func() {
		s.worker.Toggle(time.Now())
		s.Require().NoError(s.workers.Update(context.Background(), s.worker))
		defer func() {
			s.worker.Toggle(time.Now())
			s.Require().NoError(s.workers.Update(context.Background(), s.worker))
		}()

		_, err := s.service.RecordPayment(s.ctxFor(s.userID, "user"), s.worker.ID, "2026-06-07", 100, "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *IncomeServiceSuite) TestRecordPayment_Upsert() {
	first, err := s.service.RecordPayment(s.ctxFor(s.userID, "user"), s.worker.ID, "2026-06-02", 200, "")
	s.Require().NoError(err)
	second, err := s.service.RecordPayment(s.ctxFor(s.userID, "user"), s.worker.ID, "2026-06-02", 500, "")
	s.Require().NoError(err)

	s.Run("same day lands on the same record", func() {
		s.Equal(first.ID, second.ID)
		s.Equal(500.0, second.PaidAmount)
		s.True(second.IsCompleted)

		records, err := s.service.List(s.ctxFor(s.userID, "user"), 0)
		s.Require().NoError(err)
		s.Len(records, 1)
	})

	s.Run("each submission keeps its own audit entry", func() {
		entries := s.auditEntries()
		s.Require().Len(entries, 2)
		for _, e := range entries {
			s.Equal(audit.ActionPartialPaymentAdded, e.Action)
			s.Equal(first.ID.String(), e.RecordID)
		}
		s.Equal(false, entries[0].NewValue["is_completed"])
		s.Equal(true, entries[1].NewValue["is_completed"])
	})
}

func (s *IncomeServiceSuite) TestSetCompleted() {
	record, err := s.service.RecordPayment(s.ctxFor(s.userID, "user"), s.worker.ID, "2026-06-02", 200, "")
	s.Require().NoError(err)
	s.auditStore.Clear()

	s.Run("any user can check completion manually", func() {
		updated, err := s.service.SetCompleted(s.ctxFor(s.userID, "user"), record.ID, true)
		s.Require().NoError(err)
		s.True(updated.IsCompleted)
		s.Equal(200.0, updated.PaidAmount, "manual completion does not touch paid amount")

		entries := s.auditEntries()
		s.Require().Len(entries, 1)
		s.Equal(audit.ActionFullCompletionChecked, entries[0].Action)
		s.Equal(audit.Snapshot{"is_completed": false}, entries[0].PreviousValue)
		s.Equal(audit.Snapshot{"is_completed": true}, entries[0].NewValue)
	})

	s.Run("non-admin cannot uncheck", func() {
		_, err := s.service.SetCompleted(s.ctxFor(s.userID, "user"), record.ID, false)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin can uncheck", func() {
		s.auditStore.Clear()
		updated, err := s.service.SetCompleted(s.ctxFor(s.adminID, "admin"), record.ID, false)
		s.Require().NoError(err)
		s.False(updated.IsCompleted)
		s.Nil(updated.CompletedAt)
		s.Empty(updated.CompletedBy)

		entries := s.auditEntries()
		s.Require().Len(entries, 1)
		s.Equal(audit.ActionCompletionUnchecked, entries[0].Action)
		s.Equal(audit.RoleAdmin, entries[0].PerformedByRole)
	})

	s.Run("no-op toggle writes no entry", func() {
		s.auditStore.Clear()
		_, err := s.service.SetCompleted(s.ctxFor(s.userID, "user"), record.ID, false)
		s.Require().NoError(err)
		s.Empty(s.auditEntries())
	})
}

func (s *IncomeServiceSuite) TestEditAmount() {
	record, err := s.service.RecordPayment(s.ctxFor(s.userID, "user"), s.worker.ID, "2026-06-02", 200, "")
	s.Require().NoError(err)
	s.auditStore.Clear()

	s.Run("edit to the threshold completes the record", func() {
		updated, err := s.service.EditAmount(s.ctxFor(s.userID, "user"), record.ID, 500)
		s.Require().NoError(err)
		s.True(updated.IsCompleted)

		entries := s.auditEntries()
		s.Require().Len(entries, 1)
		s.Equal(audit.ActionAmountEdited, entries[0].Action)
		s.Equal(audit.Snapshot{"paid_amount": 200.0}, entries[0].PreviousValue)
		s.Equal(audit.Snapshot{"paid_amount": 500.0}, entries[0].NewValue)
	})

	s.Run("non-admin cannot edit a completed record", func() {
		_, err := s.service.EditAmount(s.ctxFor(s.userID, "user"), record.ID, 100)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin edit below threshold uncompletes", func() {
		updated, err := s.service.EditAmount(s.ctxFor(s.adminID, "admin"), record.ID, 100)
		s.Require().NoError(err)
		s.False(updated.IsCompleted)
		s.Equal(400.0, updated.RemainingBalance())
	})

	s.Run("rejects negative amount", func() {
		_, err := s.service.EditAmount(s.ctxFor(s.userID, "user"), record.ID, -1)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown record yields not found", func() {
		_, err := s.service.EditAmount(s.ctxFor(s.userID, "user"), id.NewIncomeRecordID(), 100)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *IncomeServiceSuite) TestList() {
	ctx := s.ctxFor(s.userID, "user")
	for _, date := range []string{"2026-06-01", "2026-06-03", "2026-06-02"} {
		_, err := s.service.RecordPayment(ctx, s.worker.ID, date, 100, "")
		s.Require().NoError(err)
	}

	records, err := s.service.List(ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Equal("2026-06-03", records[0].Date)
	s.Equal("2026-06-02", records[1].Date)
	s.Equal("2026-06-01", records[2].Date)

	capped, err := s.service.List(ctx, 2)
	s.Require().NoError(err)
	s.Len(capped, 2)
}
