//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"opsledger/internal/identity/models"
	id "opsledger/pkg/domain"
	"opsledger/pkg/platform/sentinel"
	"opsledger/pkg/testutil/containers"
)

type IdentityStorePostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Postgres
}

func (s *IdentityStorePostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
}

func (s *IdentityStorePostgresSuite) TearDownSuite() {
	_ = s.pg.DB.Close()
	_ = s.pg.Container.Terminate(context.Background())
}

func (s *IdentityStorePostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "user_accounts"))
}

func TestIdentityStorePostgresSuite(t *testing.T) {
	suite.Run(t, new(IdentityStorePostgresSuite))
}

func (s *IdentityStorePostgresSuite) account(email string) *models.UserAccount {
	return &models.UserAccount{
		ID:           id.NewUserID(),
		Email:        email,
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhash",
		CreatedAt:    time.Now().UTC(),
	}
}

func (s *IdentityStorePostgresSuite) TestCreateAndFindAccount() {
	ctx := context.Background()
	account := s.account("owner@example.com")
	s.Require().NoError(s.store.CreateAccount(ctx, account))

	byEmail, err := s.store.FindByEmail(ctx, "owner@example.com")
	s.Require().NoError(err)
	s.Equal(account.ID, byEmail.ID)
	s.Equal(account.PasswordHash, byEmail.PasswordHash)

	byID, err := s.store.FindByID(ctx, account.ID)
	s.Require().NoError(err)
	s.Equal("owner@example.com", byID.Email)
}

func (s *IdentityStorePostgresSuite) TestFindByEmail_CaseInsensitive() {
	ctx := context.Background()
	account := s.account("owner@example.com")
	s.Require().NoError(s.store.CreateAccount(ctx, account))

	found, err := s.store.FindByEmail(ctx, "Owner@Example.COM")
	s.Require().NoError(err)
	s.Equal(account.ID, found.ID)
}

func (s *IdentityStorePostgresSuite) TestCreateAccount_DuplicateEmail() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreateAccount(ctx, s.account("owner@example.com")))
	s.ErrorIs(s.store.CreateAccount(ctx, s.account("OWNER@example.com")), sentinel.ErrConflict)
}

func (s *IdentityStorePostgresSuite) TestFind_NotFound() {
	ctx := context.Background()
	_, err := s.store.FindByEmail(ctx, "nobody@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByID(ctx, id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *IdentityStorePostgresSuite) TestUpsertRole() {
	ctx := context.Background()
	account := s.account("owner@example.com")
	s.Require().NoError(s.store.CreateAccount(ctx, account))

	now := time.Now().UTC()
	s.Require().NoError(s.store.UpsertRole(ctx, &models.UserRole{
		UserID:    account.ID,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}))

	role, err := s.store.RoleByUserID(ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleUser, role)

	s.Require().NoError(s.store.UpsertRole(ctx, &models.UserRole{
		UserID:    account.ID,
		Role:      models.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now.Add(time.Minute),
	}))

	role, err = s.store.RoleByUserID(ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, role)
}

func (s *IdentityStorePostgresSuite) TestRoleByUserID_NotFound() {
	_, err := s.store.RoleByUserID(context.Background(), id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
