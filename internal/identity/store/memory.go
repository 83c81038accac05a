// Package store holds the identity store implementations.
package store

import (
	"context"
	"strings"
	"sync"

	"opsledger/internal/identity/models"
	id "opsledger/pkg/domain"
	"opsledger/pkg/platform/sentinel"
)

// InMemory keeps accounts and roles in mutex-guarded maps. Emails are matched
// case-insensitively, mirroring the citext column in postgres.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[id.UserID]*models.UserAccount
	byEmail  map[string]id.UserID
	roles    map[id.UserID]*models.UserRole
}

func NewInMemory() *InMemory {
	return &InMemory{
		accounts: make(map[id.UserID]*models.UserAccount),
		byEmail:  make(map[string]id.UserID),
		roles:    make(map[id.UserID]*models.UserRole),
	}
}

func (s *InMemory) CreateAccount(_ context.Context, account *models.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(account.Email)
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrConflict
	}
	cp := *account
	s.accounts[account.ID] = &cp
	s.byEmail[key] = account.ID
	return nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.accounts[userID]
	return &cp, nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *account
	return &cp, nil
}

func (s *InMemory) UpsertRole(_ context.Context, role *models.UserRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *role
	if existing, ok := s.roles[role.UserID]; ok {
		cp.CreatedAt = existing.CreatedAt
	}
	s.roles[role.UserID] = &cp
	return nil
}

func (s *InMemory) RoleByUserID(_ context.Context, userID id.UserID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, ok := s.roles[userID]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return role.Role, nil
}
