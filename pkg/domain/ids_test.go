package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "opsledger/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseWorkerID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseWorkerID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseWorkerID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseWorkerID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, WorkerID(validUUID), id)
	})

	t.Run("all parse functions share the invariant", func(t *testing.T) {
		_, err := ParseUserID("")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		_, err = ParseIncomeRecordID("nope")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		_, err = ParseExpenseID(uuid.Nil.String())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	workerID := WorkerID(uuid.New())
	expenseID := ExpenseID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ WorkerID = expenseID   // compile error
	// var _ ExpenseID = workerID   // compile error

	assert.NotEqual(t, uuid.UUID(workerID), uuid.UUID(expenseID))
}

func TestIsNil(t *testing.T) {
	assert.True(t, WorkerID{}.IsNil())
	assert.False(t, NewWorkerID().IsNil())
}
