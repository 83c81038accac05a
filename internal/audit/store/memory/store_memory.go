package memory

import (
	"context"
	"sort"
	"sync"

	"opsledger/internal/audit"
)

// InMemoryStore keeps audit entries in a mutex-guarded slice. Used by unit
// tests and local development.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

func (s *InMemoryStore) Append(_ context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, q audit.Query) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []audit.Entry
	for _, e := range s.entries {
		if q.RecordType != "" && e.RecordType != q.RecordType {
			continue
		}
		if len(q.Actions) > 0 && !matchesAction(q.Actions, e.Action) {
			continue
		}
		if q.RecordID != "" && e.RecordID != q.RecordID {
			continue
		}
		if q.WorkerID != "" && e.WorkerID != q.WorkerID {
			continue
		}
		matched = append(matched, e)
	}

	// Newest first; stable so entries with equal timestamps keep insertion order.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func matchesAction(actions []audit.Action, a audit.Action) bool {
	for _, want := range actions {
		if a == want {
			return true
		}
	}
	return false
}
