package models

import (
	"time"

	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
)

// DateLayout is the wire and storage format for record dates.
const DateLayout = "2006-01-02"

// IncomeRecord tracks one worker's payment for one day. There is at most one
// record per (worker, date); repeated submissions for the same day update the
// same row while the audit trail keeps every submission.
//
// Invariants:
//   - ExpectedAmount is snapshotted from the worker's daily income amount at
//     first write and never silently re-derived
//   - PaidAmount is never negative
//   - IsCompleted is recomputed as PaidAmount >= ExpectedAmount on every
//     amount write; a manual completion toggle can override it without
//     touching PaidAmount
type IncomeRecord struct {
	ID             id.IncomeRecordID `json:"id"`
	WorkerID       id.WorkerID       `json:"worker_id"`
	Date           string            `json:"date"`
	ExpectedAmount float64           `json:"expected_amount"`
	PaidAmount     float64           `json:"paid_amount"`
	IsCompleted    bool              `json:"is_completed"`
	Notes          string            `json:"notes,omitempty"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
	CompletedBy    string            `json:"completed_by,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// RemainingBalance is what the worker still owes for the day, floored at 0.
func (r *IncomeRecord) RemainingBalance() float64 {
	if remaining := r.ExpectedAmount - r.PaidAmount; remaining > 0 {
		return remaining
	}
	return 0
}

// ApplyPayment sets the paid amount and recomputes completion against the
// snapshotted expected amount.
func (r *IncomeRecord) ApplyPayment(paidAmount float64, actor string, now time.Time) {
	r.PaidAmount = paidAmount
	r.setCompletion(paidAmount >= r.ExpectedAmount, actor, now)
	r.UpdatedAt = now
}

// SetCompleted overrides the completion flag without changing PaidAmount.
func (r *IncomeRecord) SetCompleted(completed bool, actor string, now time.Time) {
	r.setCompletion(completed, actor, now)
	r.UpdatedAt = now
}

func (r *IncomeRecord) setCompletion(completed bool, actor string, now time.Time) {
	r.IsCompleted = completed
	if completed {
		at := now
		r.CompletedAt = &at
		r.CompletedBy = actor
	} else {
		r.CompletedAt = nil
		r.CompletedBy = ""
	}
}

// ParseDate validates a YYYY-MM-DD date string.
func ParseDate(raw string) (string, error) {
	if raw == "" {
		return "", dErrors.New(dErrors.CodeValidation, "date is required")
	}
	if _, err := time.Parse(DateLayout, raw); err != nil {
		return "", dErrors.New(dErrors.CodeValidation, "date must be in YYYY-MM-DD format")
	}
	return raw, nil
}
