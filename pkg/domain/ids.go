// Package domain holds typed identifiers shared across verticals.
//
// Each entity gets its own UUID wrapper so the compiler rejects cross-type
// assignment (passing a WorkerID where an ExpenseID is expected). Parse
// functions enforce the trust-boundary invariant: IDs must be valid,
// non-empty, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "opsledger/pkg/domain-errors"
)

type (
	// UserID identifies an authenticated account.
	UserID uuid.UUID
	// WorkerID identifies a worker profile.
	WorkerID uuid.UUID
	// IncomeRecordID identifies a daily income record.
	IncomeRecordID uuid.UUID
	// ExpenseID identifies an expense.
	ExpenseID uuid.UUID
	// AuditEntryID identifies an audit log entry.
	AuditEntryID uuid.UUID
)

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id WorkerID) String() string       { return uuid.UUID(id).String() }
func (id IncomeRecordID) String() string { return uuid.UUID(id).String() }
func (id ExpenseID) String() string      { return uuid.UUID(id).String() }
func (id AuditEntryID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id WorkerID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id IncomeRecordID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ExpenseID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id AuditEntryID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// NewUserID generates a fresh UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewWorkerID generates a fresh WorkerID.
func NewWorkerID() WorkerID { return WorkerID(uuid.New()) }

// NewIncomeRecordID generates a fresh IncomeRecordID.
func NewIncomeRecordID() IncomeRecordID { return IncomeRecordID(uuid.New()) }

// NewExpenseID generates a fresh ExpenseID.
func NewExpenseID() ExpenseID { return ExpenseID(uuid.New()) }

// NewAuditEntryID generates a fresh AuditEntryID.
func NewAuditEntryID() AuditEntryID { return AuditEntryID(uuid.New()) }

func parse(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID validates and parses a user ID from its string form.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseWorkerID validates and parses a worker ID from its string form.
func ParseWorkerID(raw string) (WorkerID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return WorkerID{}, err
	}
	return WorkerID(parsed), nil
}

// ParseIncomeRecordID validates and parses an income record ID from its string form.
func ParseIncomeRecordID(raw string) (IncomeRecordID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return IncomeRecordID{}, err
	}
	return IncomeRecordID(parsed), nil
}

// ParseExpenseID validates and parses an expense ID from its string form.
func ParseExpenseID(raw string) (ExpenseID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return ExpenseID{}, err
	}
	return ExpenseID(parsed), nil
}
