package audit

import "context"

//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks

// Query narrows a trail read. All fields are optional and combine
// conjunctively; Actions matches any of the given actions. Zero Limit means
// no cap.
type Query struct {
	RecordType RecordType
	Actions    []Action
	RecordID   string
	WorkerID   string
	Limit      int
}

// Store persists audit entries. Append is insert-only; List returns entries
// newest first.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, q Query) ([]Entry, error)
}
