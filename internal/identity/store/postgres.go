package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"opsledger/internal/identity/models"
	id "opsledger/pkg/domain"
	"opsledger/pkg/platform/sentinel"
)

// Postgres persists accounts in user_accounts and roles in user_roles.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateAccount(ctx context.Context, account *models.UserAccount) error {
	query := `
		INSERT INTO user_accounts (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(account.ID),
		account.Email,
		account.PasswordHash,
		account.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.UserAccount, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx,
		selectAccount+" WHERE lower(email) = lower($1)", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return account, nil
}

func (s *Postgres) FindByID(ctx context.Context, userID id.UserID) (*models.UserAccount, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx,
		selectAccount+" WHERE id = $1", uuid.UUID(userID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

func (s *Postgres) UpsertRole(ctx context.Context, role *models.UserRole) error {
	query := `
		INSERT INTO user_roles (user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET role = $2, updated_at = $4
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(role.UserID),
		role.Role,
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert role: %w", err)
	}
	return nil
}

func (s *Postgres) RoleByUserID(ctx context.Context, userID id.UserID) (string, error) {
	var role string
	err := s.db.QueryRowContext(ctx,
		`SELECT role FROM user_roles WHERE user_id = $1`, uuid.UUID(userID)).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find role: %w", err)
	}
	return role, nil
}

const selectAccount = `
	SELECT id, email, password_hash, created_at
	FROM user_accounts
`

func scanAccount(row *sql.Row) (*models.UserAccount, error) {
	var (
		account models.UserAccount
		userID  uuid.UUID
	)
	if err := row.Scan(&userID, &account.Email, &account.PasswordHash, &account.CreatedAt); err != nil {
		return nil, err
	}
	account.ID = id.UserID(userID)
	return &account, nil
}
