package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"opsledger/internal/identity/models"
	"opsledger/internal/platform/middleware"
	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler_mocks.go -package=mocks Service

// Service defines the interface for account operations.
type Service interface {
	SignUp(ctx context.Context, email, password, role string) (*models.UserAccount, error)
	SignIn(ctx context.Context, email, password string) (string, error)
}

// Handler serves the public auth endpoints.
type Handler struct {
	logger   *slog.Logger
	service  Service
	tokenTTL time.Duration
}

func New(service Service, tokenTTL time.Duration, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service, tokenTTL: tokenTTL}
}

// Register wires the public routes; no auth middleware runs in front of these.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/signup", h.handleSignUp)
	r.Post("/auth/signin", h.handleSignIn)
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r *signUpRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *signInRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[signUpRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	account, err := h.service.SignUp(ctx, req.Email, req.Password, req.Role)
	if err != nil {
		h.writeServiceError(w, ctx, "failed to sign up", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"id":    account.ID.String(),
		"email": account.Email,
	})
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[signInRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	token, err := h.service.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, ctx, "failed to sign in", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(h.tokenTTL.Seconds()),
	})
}

// writeServiceError logs infrastructure failures and passes coded errors
// through to the envelope.
func (h *Handler) writeServiceError(w http.ResponseWriter, ctx context.Context, msg string, err error) {
	if dErrors.GetCode(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
