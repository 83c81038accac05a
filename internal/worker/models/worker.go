package models

import (
	"strings"
	"time"

	"opsledger/internal/audit"
	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
)

// Status is a worker's employment state. Inactive workers keep their history
// but stop appearing in payment entry forms.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Worker is a person paid a fixed daily income amount.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - DailyIncomeAmount is never negative
//   - Status is active or inactive
type Worker struct {
	ID                id.WorkerID `json:"id"`
	Name              string      `json:"name"`
	DailyIncomeAmount float64     `json:"daily_income_amount"`
	Status            Status      `json:"status"`
	CreatedBy         string      `json:"created_by"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// NewWorker validates the invariants and constructs an active worker.
func NewWorker(workerID id.WorkerID, name string, dailyIncomeAmount float64, createdBy string, now time.Time) (*Worker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "worker name is required")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "worker name must be at most 128 characters")
	}
	if dailyIncomeAmount < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "daily income amount must not be negative")
	}
	return &Worker{
		ID:                workerID,
		Name:              name,
		DailyIncomeAmount: dailyIncomeAmount,
		Status:            StatusActive,
		CreatedBy:         createdBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (w *Worker) IsActive() bool {
	return w.Status == StatusActive
}

// Toggle flips the worker between active and inactive.
func (w *Worker) Toggle(now time.Time) {
	if w.Status == StatusActive {
		w.Status = StatusInactive
	} else {
		w.Status = StatusActive
	}
	w.UpdatedAt = now
}

// Snapshot captures the full record for audit trail storage. Used as the
// PreviousValue when a worker is deleted, so the trail alone can reconstruct
// what was removed.
func (w *Worker) Snapshot() audit.Snapshot {
	return audit.Snapshot{
		"id":                  w.ID.String(),
		"name":                w.Name,
		"daily_income_amount": w.DailyIncomeAmount,
		"status":              string(w.Status),
		"created_by":          w.CreatedBy,
		"created_at":          w.CreatedAt.Format(time.RFC3339Nano),
	}
}
