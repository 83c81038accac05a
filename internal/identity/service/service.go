package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	identitymetrics "opsledger/internal/identity/metrics"
	"opsledger/internal/identity/models"
	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/platform/sentinel"
	"opsledger/pkg/requestcontext"
)

const minPasswordLength = 8

// AccountStore persists user accounts.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *models.UserAccount) error
	FindByEmail(ctx context.Context, email string) (*models.UserAccount, error)
	FindByID(ctx context.Context, userID id.UserID) (*models.UserAccount, error)
}

// RoleStore persists role assignments.
type RoleStore interface {
	UpsertRole(ctx context.Context, role *models.UserRole) error
	RoleByUserID(ctx context.Context, userID id.UserID) (string, error)
}

// RoleCache is an optional TTL cache in front of the role store. Cache
// failures are treated as misses, never surfaced to callers.
type RoleCache interface {
	Get(ctx context.Context, userID id.UserID) (string, error)
	Set(ctx context.Context, userID id.UserID, role string) error
}

// TokenIssuer mints access tokens for signed-in users.
type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, expiresIn time.Duration) (string, error)
}

// Service handles account lifecycle and role resolution.
type Service struct {
	accounts AccountStore
	roles    RoleStore
	tokens   TokenIssuer
	cache    RoleCache
	tokenTTL time.Duration
	logger   *slog.Logger
	metrics  *identitymetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithRoleCache(cache RoleCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.tokenTTL = ttl
	}
}

func WithMetrics(m *identitymetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(accounts AccountStore, roles RoleStore, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		accounts: accounts,
		roles:    roles,
		tokens:   tokens,
		tokenTTL: 24 * time.Hour,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp creates an account with a bcrypt-hashed password. An empty role
// defaults to user.
func (s *Service) SignUp(ctx context.Context, email, password, role string) (*models.UserAccount, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "a valid email address is required")
	}
	if len(password) < minPasswordLength {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, dErrors.New(dErrors.CodeValidation, "role must be user or admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	account := &models.UserAccount{
		ID:           id.NewUserID(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	if err := s.roles.UpsertRole(ctx, &models.UserRole{
		UserID:    account.ID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to assign role")
	}

	if s.metrics != nil {
		s.metrics.SignUps.Inc()
	}
	return account, nil
}

// SignIn verifies the credentials and returns a signed access token. Unknown
// emails and wrong passwords produce the same error.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, error) {
	account, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.countSignInFailure()
			return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.countSignInFailure()
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.GenerateAccessToken(uuid.UUID(account.ID), s.tokenTTL)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	if s.metrics != nil {
		s.metrics.SignIns.Inc()
	}
	return token, nil
}

// RoleFor resolves the role an account holds right now. The cache is
// consulted first; any cache failure falls through to the store. Accounts
// without a role row resolve to none.
func (s *Service) RoleFor(ctx context.Context, userID id.UserID) (string, error) {
	if s.cache != nil {
		role, err := s.cache.Get(ctx, userID)
		switch {
		case err == nil:
			if s.metrics != nil {
				s.metrics.RoleCacheHits.Inc()
			}
			return role, nil
		case !errors.Is(err, sentinel.ErrNotFound):
			s.logger.WarnContext(ctx, "role cache unavailable, falling through to store",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		if s.metrics != nil {
			s.metrics.RoleCacheMisses.Inc()
		}
	}

	role, err := s.roles.RoleByUserID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		role = models.RoleNone
	} else if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve role")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, role); err != nil {
			s.logger.WarnContext(ctx, "failed to cache role",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	return role, nil
}

func (s *Service) countSignInFailure() {
	if s.metrics != nil {
		s.metrics.SignInFailures.Inc()
	}
}
