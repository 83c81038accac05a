// Package store holds the worker store implementations. The service defines
// the interface it needs; memory backs unit tests and local development,
// postgres backs production.
package store

import (
	"context"
	"sort"
	"sync"

	"opsledger/internal/worker/models"
	id "opsledger/pkg/domain"
	"opsledger/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store.
type InMemory struct {
	mu      sync.RWMutex
	workers map[id.WorkerID]*models.Worker
}

func NewInMemory() *InMemory {
	return &InMemory{workers: make(map[id.WorkerID]*models.Worker)}
}

func (s *InMemory) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = make(map[id.WorkerID]*models.Worker)
}

func (s *InMemory) Create(_ context.Context, worker *models.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.workers[worker.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *worker
	s.workers[worker.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, workerID id.WorkerID) (*models.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	worker, ok := s.workers[workerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *worker
	return &cp, nil
}

func (s *InMemory) Update(_ context.Context, worker *models.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workers[worker.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *worker
	s.workers[worker.ID] = &cp
	return nil
}

func (s *InMemory) Delete(_ context.Context, workerID id.WorkerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workers[workerID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.workers, workerID)
	return nil
}

func (s *InMemory) List(_ context.Context, onlyActive bool) ([]*models.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Worker, 0, len(s.workers))
	for _, worker := range s.workers {
		if onlyActive && !worker.IsActive() {
			continue
		}
		cp := *worker
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
