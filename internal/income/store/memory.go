// Package store holds the income record store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"opsledger/internal/income/models"
	id "opsledger/pkg/domain"
	"opsledger/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store keyed by record ID with a secondary
// (worker, date) index to enforce the one-record-per-day invariant.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.IncomeRecordID]*models.IncomeRecord
	byDay   map[dayKey]id.IncomeRecordID
}

type dayKey struct {
	workerID id.WorkerID
	date     string
}

func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[id.IncomeRecordID]*models.IncomeRecord),
		byDay:   make(map[dayKey]id.IncomeRecordID),
	}
}

func (s *InMemory) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[id.IncomeRecordID]*models.IncomeRecord)
	s.byDay = make(map[dayKey]id.IncomeRecordID)
}

func (s *InMemory) Create(_ context.Context, record *models.IncomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey{workerID: record.WorkerID, date: record.Date}
	if _, exists := s.byDay[key]; exists {
		return sentinel.ErrConflict
	}
	cp := *record
	s.records[record.ID] = &cp
	s.byDay[key] = record.ID
	return nil
}

func (s *InMemory) Update(_ context.Context, record *models.IncomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *record
	s.records[record.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, recordID id.IncomeRecordID) (*models.IncomeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *record
	return &cp, nil
}

func (s *InMemory) FindByWorkerAndDate(_ context.Context, workerID id.WorkerID, date string) (*models.IncomeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recordID, ok := s.byDay[dayKey{workerID: workerID, date: date}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.records[recordID]
	return &cp, nil
}

func (s *InMemory) List(_ context.Context, limit int) ([]*models.IncomeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.IncomeRecord, 0, len(s.records))
	for _, record := range s.records {
		cp := *record
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListByDateRange returns records with from <= date <= to. Empty bounds are
// unbounded; date strings compare lexicographically in YYYY-MM-DD form.
func (s *InMemory) ListByDateRange(_ context.Context, from, to string) ([]*models.IncomeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.IncomeRecord
	for _, record := range s.records {
		if from != "" && record.Date < from {
			continue
		}
		if to != "" && record.Date > to {
			continue
		}
		cp := *record
		out = append(out, &cp)
	}
	return out, nil
}

// DeleteByWorker removes all records for a worker. The postgres store relies
// on the foreign key cascade instead; this keeps the memory store consistent
// when a worker is deleted in tests and local runs.
func (s *InMemory) DeleteByWorker(_ context.Context, workerID id.WorkerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, recordID := range s.byDay {
		if key.workerID == workerID {
			delete(s.records, recordID)
			delete(s.byDay, key)
		}
	}
	return nil
}
