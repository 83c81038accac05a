package audit

import (
	"time"

	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
)

// Action identifies what happened to a record. The set is closed: writers
// pick from these constants and the recorder rejects anything else, so the
// trail stays queryable by exact action name.
type Action string

const (
	ActionPartialPaymentAdded   Action = "partial_payment_added"
	ActionFullCompletionChecked Action = "full_completion_checked"
	ActionCompletionUnchecked   Action = "completion_unchecked"
	ActionAmountEdited          Action = "amount_edited"
	ActionRecordDeleted         Action = "record_deleted"
	ActionRecordCreated         Action = "record_created"
	ActionExpenseMarkedPaid     Action = "expense_marked_paid"
	ActionExpenseMarkedUnpaid   Action = "expense_marked_unpaid"
	ActionWorkerCreated         Action = "worker_created"
	ActionWorkerUpdated         Action = "worker_updated"
	ActionWorkerDeleted         Action = "worker_deleted"
)

var knownActions = map[Action]struct{}{
	ActionPartialPaymentAdded:   {},
	ActionFullCompletionChecked: {},
	ActionCompletionUnchecked:   {},
	ActionAmountEdited:          {},
	ActionRecordDeleted:         {},
	ActionRecordCreated:         {},
	ActionExpenseMarkedPaid:     {},
	ActionExpenseMarkedUnpaid:   {},
	ActionWorkerCreated:         {},
	ActionWorkerUpdated:         {},
	ActionWorkerDeleted:         {},
}

// IsValid reports whether a is one of the closed action set.
func (a Action) IsValid() bool {
	_, ok := knownActions[a]
	return ok
}

// RecordType classifies the entity an entry refers to.
type RecordType string

const (
	RecordTypeIncome  RecordType = "income"
	RecordTypeExpense RecordType = "expense"
	RecordTypeWorker  RecordType = "worker"
)

// IsValid reports whether t is a known record type.
func (t RecordType) IsValid() bool {
	switch t {
	case RecordTypeIncome, RecordTypeExpense, RecordTypeWorker:
		return true
	}
	return false
}

// Role is the role the actor held when the mutation ran. Captured at write
// time from the request context, never re-derived later.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Snapshot holds the relevant fields of a record before or after a mutation.
// Persisted as JSONB.
type Snapshot map[string]any

// Entry is one immutable line of the audit trail. Entries are append-only:
// nothing in the system updates or deletes them.
type Entry struct {
	ID              id.AuditEntryID
	Action          Action
	RecordType      RecordType
	RecordID        string
	WorkerID        string
	PerformedBy     string
	PerformedByRole Role
	PreviousValue   Snapshot
	NewValue        Snapshot
	Reason          string
	CreatedAt       time.Time
}

// Validate checks the required fields and enum membership. A failing entry is
// never written; the caller gets this error synchronously.
func (e Entry) Validate() error {
	if !e.Action.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown audit action %q", string(e.Action))
	}
	if !e.RecordType.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown record type %q", string(e.RecordType))
	}
	if e.RecordID == "" {
		return dErrors.New(dErrors.CodeValidation, "record id is required")
	}
	if e.PerformedBy == "" {
		return dErrors.New(dErrors.CodeValidation, "performed_by is required")
	}
	if !e.PerformedByRole.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown role %q", string(e.PerformedByRole))
	}
	return nil
}
