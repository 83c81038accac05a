package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"opsledger/internal/expense/models"
	expenseservice "opsledger/internal/expense/service"
	"opsledger/internal/platform/middleware"
	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler_mocks.go -package=mocks Service

// maxListLimit caps how many expenses one call may return.
const maxListLimit = 100

// Service defines the interface for expense operations.
type Service interface {
	Create(ctx context.Context, req expenseservice.CreateRequest) (*models.Expense, error)
	SetPaid(ctx context.Context, expenseID id.ExpenseID, paid bool) (*models.Expense, error)
	Delete(ctx context.Context, expenseID id.ExpenseID) error
	Get(ctx context.Context, expenseID id.ExpenseID) (*models.Expense, error)
	List(ctx context.Context, limit int) ([]*models.Expense, error)
}

// Handler serves the expense endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register wires the routes any authenticated user may call.
func (h *Handler) Register(r chi.Router) {
	r.Get("/expenses", h.handleList)
	r.Get("/expenses/{id}", h.handleGet)
	r.Post("/expenses", h.handleCreate)
	r.Post("/expenses/{id}/paid", h.handleSetPaid)
}

// RegisterAdmin wires the admin-only routes; the router mounts these behind
// RequireAdmin.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Delete("/expenses/{id}", h.handleDelete)
}

type createRequest struct {
	WorkerID          string  `json:"worker_id"`
	Amount            float64 `json:"amount"`
	Category          string  `json:"category"`
	Description       string  `json:"description"`
	ExpenseType       string  `json:"expense_type"`
	RecurrencePattern string  `json:"recurrence_pattern"`
	Date              string  `json:"date"`
}

func (r *createRequest) Validate() error {
	r.Category = strings.TrimSpace(r.Category)
	if r.WorkerID == "" {
		return dErrors.New(dErrors.CodeValidation, "worker_id is required")
	}
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	if r.Category == "" {
		return dErrors.New(dErrors.CodeValidation, "category is required")
	}
	if r.ExpenseType == "" {
		return dErrors.New(dErrors.CodeValidation, "expense_type is required")
	}
	if r.Date == "" {
		return dErrors.New(dErrors.CodeValidation, "date is required")
	}
	return nil
}

type setPaidRequest struct {
	Paid bool `json:"paid"`
}

func (r *setPaidRequest) Validate() error {
	return nil
}

type expenseResponse struct {
	ID                string  `json:"id"`
	WorkerID          string  `json:"worker_id"`
	Amount            float64 `json:"amount"`
	Category          string  `json:"category"`
	Description       string  `json:"description,omitempty"`
	ExpenseType       string  `json:"expense_type"`
	RecurrencePattern string  `json:"recurrence_pattern,omitempty"`
	Date              string  `json:"date"`
	IsPaid            bool    `json:"is_paid"`
	PaidAt            string  `json:"paid_at,omitempty"`
	PaidBy            string  `json:"paid_by,omitempty"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	resp := expenseResponse{
		ID:                e.ID.String(),
		WorkerID:          e.WorkerID.String(),
		Amount:            e.Amount,
		Category:          e.Category,
		Description:       e.Description,
		ExpenseType:       string(e.ExpenseType),
		RecurrencePattern: string(e.RecurrencePattern),
		Date:              e.Date,
		IsPaid:            e.IsPaid,
		PaidBy:            e.PaidBy,
		CreatedAt:         e.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:         e.UpdatedAt.Format(time.RFC3339Nano),
	}
	if e.PaidAt != nil {
		resp.PaidAt = e.PaidAt.Format(time.RFC3339Nano)
	}
	return resp
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	workerID, err := id.ParseWorkerID(req.WorkerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	expense, err := h.service.Create(ctx, expenseservice.CreateRequest{
		WorkerID:          workerID,
		Amount:            req.Amount,
		Category:          req.Category,
		Description:       req.Description,
		ExpenseType:       models.Type(req.ExpenseType),
		RecurrencePattern: models.RecurrencePattern(req.RecurrencePattern),
		Date:              req.Date,
	})
	if err != nil {
		h.writeServiceError(w, ctx, "failed to create expense", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (h *Handler) handleSetPaid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	expenseID, err := id.ParseExpenseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[setPaidRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	expense, err := h.service.SetPaid(ctx, expenseID, req.Paid)
	if err != nil {
		h.writeServiceError(w, ctx, "failed to toggle expense paid flag", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	expenseID, err := id.ParseExpenseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, expenseID); err != nil {
		h.writeServiceError(w, ctx, "failed to delete expense", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	expenseID, err := id.ParseExpenseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	expense, err := h.service.Get(ctx, expenseID)
	if err != nil {
		h.writeServiceError(w, ctx, "failed to get expense", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := maxListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer"))
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	expenses, err := h.service.List(ctx, limit)
	if err != nil {
		h.writeServiceError(w, ctx, "failed to list expenses", err)
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		out = append(out, toExpenseResponse(expense))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"expenses": out})
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
