// Package models holds the expense domain model.
package models

import (
	"strings"
	"time"

	"opsledger/internal/audit"
	incomemodels "opsledger/internal/income/models"
	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
)

// Type distinguishes one-off costs from recurring ones.
type Type string

const (
	TypeOneTime   Type = "one_time"
	TypeRecurring Type = "recurring"
)

// RecurrencePattern applies to recurring expenses only.
type RecurrencePattern string

const (
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
)

// Expense is a cost attributed to a worker.
//
// Invariants:
//   - Amount is strictly positive
//   - ExpenseType is one_time or recurring
//   - RecurrencePattern is set if and only if the expense is recurring
type Expense struct {
	ID                id.ExpenseID      `json:"id"`
	WorkerID          id.WorkerID       `json:"worker_id"`
	Amount            float64           `json:"amount"`
	Category          string            `json:"category"`
	Description       string            `json:"description"`
	ExpenseType       Type              `json:"expense_type"`
	RecurrencePattern RecurrencePattern `json:"recurrence_pattern,omitempty"`
	Date              string            `json:"date"`
	IsPaid            bool              `json:"is_paid"`
	PaidAt            *time.Time        `json:"paid_at,omitempty"`
	PaidBy            string            `json:"paid_by,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// NewExpense validates the invariants and constructs an unpaid expense.
func NewExpense(expenseID id.ExpenseID, workerID id.WorkerID, amount float64, category, description string, expenseType Type, pattern RecurrencePattern, date string, now time.Time) (*Expense, error) {
	category = strings.TrimSpace(category)
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "expense amount must be positive")
	}
	if category == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "expense category is required")
	}
	switch expenseType {
	case TypeOneTime:
		if pattern != "" {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "recurrence pattern only applies to recurring expenses")
		}
	case TypeRecurring:
		switch pattern {
		case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		default:
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "recurring expenses need a daily, weekly or monthly pattern")
		}
	default:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "expense type must be one_time or recurring")
	}
	date, err := incomemodels.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return &Expense{
		ID:                expenseID,
		WorkerID:          workerID,
		Amount:            amount,
		Category:          category,
		Description:       strings.TrimSpace(description),
		ExpenseType:       expenseType,
		RecurrencePattern: pattern,
		Date:              date,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// SetPaid marks or unmarks the expense as paid. PaidAt and PaidBy are stamped
// when marking and cleared when unmarking.
func (e *Expense) SetPaid(paid bool, actor string, now time.Time) {
	e.IsPaid = paid
	if paid {
		at := now
		e.PaidAt = &at
		e.PaidBy = actor
	} else {
		e.PaidAt = nil
		e.PaidBy = ""
	}
	e.UpdatedAt = now
}

// Snapshot captures the full record for audit trail storage. Used as the
// PreviousValue on delete.
func (e *Expense) Snapshot() audit.Snapshot {
	snap := audit.Snapshot{
		"id":           e.ID.String(),
		"worker_id":    e.WorkerID.String(),
		"amount":       e.Amount,
		"category":     e.Category,
		"description":  e.Description,
		"expense_type": string(e.ExpenseType),
		"date":         e.Date,
		"is_paid":      e.IsPaid,
		"created_at":   e.CreatedAt.Format(time.RFC3339Nano),
	}
	if e.RecurrencePattern != "" {
		snap["recurrence_pattern"] = string(e.RecurrencePattern)
	}
	return snap
}
