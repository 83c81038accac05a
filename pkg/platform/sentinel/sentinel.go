// Package sentinel holds the errors stores report about persistence facts.
// Services translate them into coded domain errors; handlers never see them
// directly. Validation failures are not sentinels, they use pkg/domain-errors.
package sentinel

import "errors"

var (
	// ErrNotFound means the entity does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the write collides with existing state, such as a
	// duplicate email or a second record for the same worker and day.
	ErrConflict = errors.New("conflict")
)
