package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"opsledger/internal/identity/models"
	"opsledger/internal/identity/store"
	"opsledger/internal/jwttoken"
	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/platform/sentinel"
)

// fakeCache lets tests force hits, misses and outages.
type fakeCache struct {
	roles map[id.UserID]string
	err   error
	sets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{roles: make(map[id.UserID]string)}
}

func (c *fakeCache) Get(_ context.Context, userID id.UserID) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	role, ok := c.roles[userID]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return role, nil
}

func (c *fakeCache) Set(_ context.Context, userID id.UserID, role string) error {
	if c.err != nil {
		return c.err
	}
	c.roles[userID] = role
	c.sets++
	return nil
}

type IdentityServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	cache   *fakeCache
	service *Service
}

func (s *IdentityServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.cache = newFakeCache()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwttoken.NewJWTService("test-signing-key", "opsledger", "opsledger")
	s.service = New(s.store, s.store, tokens,
		WithLogger(logger),
		WithRoleCache(s.cache),
		WithTokenTTL(time.Hour),
	)
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) TestSignUp() {
	s.Run("creates the account with a hashed password and default role", func() {
		account, err := s.service.SignUp(context.Background(), "Ana@Example.com", "hunter2hunter2", "")
		s.Require().NoError(err)
		s.Equal("ana@example.com", account.Email)
		s.NotEqual("hunter2hunter2", account.PasswordHash)

		role, err := s.store.RoleByUserID(context.Background(), account.ID)
		s.Require().NoError(err)
		s.Equal(models.RoleUser, role)
	})

	s.Run("duplicate email conflicts", func() {
		_, err := s.service.SignUp(context.Background(), "ana@example.com", "hunter2hunter2", "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("rejects short passwords", func() {
		_, err := s.service.SignUp(context.Background(), "ben@example.com", "short", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects bad email", func() {
		_, err := s.service.SignUp(context.Background(), "not-an-email", "hunter2hunter2", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects unknown role", func() {
		_, err := s.service.SignUp(context.Background(), "ben@example.com", "hunter2hunter2", "superuser")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("admin role is assignable", func() {
		account, err := s.service.SignUp(context.Background(), "boss@example.com", "hunter2hunter2", models.RoleAdmin)
		s.Require().NoError(err)

		role, err := s.store.RoleByUserID(context.Background(), account.ID)
		s.Require().NoError(err)
		s.Equal(models.RoleAdmin, role)
	})
}

func (s *IdentityServiceSuite) TestSignIn() {
	account, err := s.service.SignUp(context.Background(), "ana@example.com", "hunter2hunter2", "")
	s.Require().NoError(err)

	s.Run("valid credentials produce a token carrying the user id", func() {
		token, err := s.service.SignIn(context.Background(), "ana@example.com", "hunter2hunter2")
		s.Require().NoError(err)

		tokens := jwttoken.NewJWTService("test-signing-key", "opsledger", "opsledger")
		claims, err := tokens.ValidateToken(token)
		s.Require().NoError(err)
		s.Equal(account.ID.String(), claims.UserID)
	})

	s.Run("wrong password is unauthorized", func() {
		_, err := s.service.SignIn(context.Background(), "ana@example.com", "wrong-password")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown email gets the same error", func() {
		_, err := s.service.SignIn(context.Background(), "ghost@example.com", "hunter2hunter2")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *IdentityServiceSuite) TestRoleFor() {
	account, err := s.service.SignUp(context.Background(), "ana@example.com", "hunter2hunter2", models.RoleAdmin)
	s.Require().NoError(err)

	s.Run("store miss populates the cache", func() {
		role, err := s.service.RoleFor(context.Background(), account.ID)
		s.Require().NoError(err)
		s.Equal(models.RoleAdmin, role)
		s.Equal(1, s.cache.sets)
	})

	s.Run("subsequent lookups hit the cache", func() {
		role, err := s.service.RoleFor(context.Background(), account.ID)
		s.Require().NoError(err)
		s.Equal(models.RoleAdmin, role)
		s.Equal(1, s.cache.sets, "no extra cache write on a hit")
	})

	s.Run("cache outage falls through to the store", func() {
		s.cache.err = errors.New("redis down")
		role, err := s.service.RoleFor(context.Background(), account.ID)
		s.Require().NoError(err)
		s.Equal(models.RoleAdmin, role)
		s.cache.err = nil
	})

	s.Run("account without a role row resolves to none", func() {
		role, err := s.service.RoleFor(context.Background(), id.NewUserID())
		s.Require().NoError(err)
		s.Equal(models.RoleNone, role)
	})
}
