// Package store holds the expense store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"opsledger/internal/expense/models"
	id "opsledger/pkg/domain"
	"opsledger/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store used by unit tests and local runs.
type InMemory struct {
	mu       sync.RWMutex
	expenses map[id.ExpenseID]*models.Expense
}

func NewInMemory() *InMemory {
	return &InMemory{expenses: make(map[id.ExpenseID]*models.Expense)}
}

func (s *InMemory) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = make(map[id.ExpenseID]*models.Expense)
}

func (s *InMemory) Create(_ context.Context, expense *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *expense
	s.expenses[expense.ID] = &cp
	return nil
}

func (s *InMemory) Update(_ context.Context, expense *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[expense.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *expense
	s.expenses[expense.ID] = &cp
	return nil
}

func (s *InMemory) Delete(_ context.Context, expenseID id.ExpenseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[expenseID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.expenses, expenseID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, expenseID id.ExpenseID) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expense, ok := s.expenses[expenseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *expense
	return &cp, nil
}

func (s *InMemory) List(_ context.Context, limit int) ([]*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Expense, 0, len(s.expenses))
	for _, expense := range s.expenses {
		cp := *expense
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

// ListByDateRange returns expenses with from <= date <= to. Empty bounds are
// unbounded.
func (s *InMemory) ListByDateRange(_ context.Context, from, to string) ([]*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Expense
	for _, expense := range s.expenses {
		if from != "" && expense.Date < from {
			continue
		}
		if to != "" && expense.Date > to {
			continue
		}
		cp := *expense
		out = append(out, &cp)
	}
	return out, nil
}

// DeleteByWorker removes all expenses for a worker. The postgres store relies
// on the foreign key cascade instead.
func (s *InMemory) DeleteByWorker(_ context.Context, workerID id.WorkerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for expenseID, expense := range s.expenses {
		if expense.WorkerID == workerID {
			delete(s.expenses, expenseID)
		}
	}
	return nil
}
