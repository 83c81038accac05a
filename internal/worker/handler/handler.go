package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"opsledger/internal/platform/middleware"
	"opsledger/internal/worker/models"
	workerservice "opsledger/internal/worker/service"
	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler_mocks.go -package=mocks Service

// Service defines the interface for worker operations.
type Service interface {
	Create(ctx context.Context, name string, dailyIncomeAmount float64) (*models.Worker, error)
	Update(ctx context.Context, workerID id.WorkerID, req workerservice.UpdateRequest) (*models.Worker, error)
	ToggleStatus(ctx context.Context, workerID id.WorkerID) (*models.Worker, error)
	Delete(ctx context.Context, workerID id.WorkerID) error
	Get(ctx context.Context, workerID id.WorkerID) (*models.Worker, error)
	List(ctx context.Context, onlyActive bool) ([]*models.Worker, error)
}

// Handler serves the worker endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register wires the routes any authenticated user may call.
func (h *Handler) Register(r chi.Router) {
	r.Get("/workers", h.handleList)
	r.Get("/workers/{id}", h.handleGet)
	r.Patch("/workers/{id}", h.handleUpdate)
}

// RegisterAdmin wires the admin-only routes; the router mounts these behind
// RequireAdmin.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/workers", h.handleCreate)
	r.Delete("/workers/{id}", h.handleDelete)
}

type createRequest struct {
	Name              string  `json:"name"`
	DailyIncomeAmount float64 `json:"daily_income_amount"`
}

func (r *createRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.DailyIncomeAmount < 0 {
		return dErrors.New(dErrors.CodeValidation, "daily_income_amount must not be negative")
	}
	return nil
}

type updateRequest struct {
	Name              *string  `json:"name"`
	DailyIncomeAmount *float64 `json:"daily_income_amount"`
	ToggleStatus      bool     `json:"toggle_status"`
}

func (r *updateRequest) Validate() error {
	if r.Name == nil && r.DailyIncomeAmount == nil && !r.ToggleStatus {
		return dErrors.New(dErrors.CodeValidation, "nothing to update")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name must not be empty")
	}
	if r.DailyIncomeAmount != nil && *r.DailyIncomeAmount < 0 {
		return dErrors.New(dErrors.CodeValidation, "daily_income_amount must not be negative")
	}
	return nil
}

type workerResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	DailyIncomeAmount float64 `json:"daily_income_amount"`
	Status            string  `json:"status"`
	CreatedBy         string  `json:"created_by"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

func toWorkerResponse(w *models.Worker) workerResponse {
	return workerResponse{
		ID:                w.ID.String(),
		Name:              w.Name,
		DailyIncomeAmount: w.DailyIncomeAmount,
		Status:            string(w.Status),
		CreatedBy:         w.CreatedBy,
		CreatedAt:         w.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:         w.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	worker, err := h.service.Create(ctx, req.Name, req.DailyIncomeAmount)
	if err != nil {
		h.writeServiceError(w, ctx, "failed to create worker", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toWorkerResponse(worker))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	workerID, err := id.ParseWorkerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[updateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var worker *models.Worker
	if req.ToggleStatus {
		worker, err = h.service.ToggleStatus(ctx, workerID)
	} else {
		worker, err = h.service.Update(ctx, workerID, workerservice.UpdateRequest{
			Name:              req.Name,
			DailyIncomeAmount: req.DailyIncomeAmount,
		})
	}
	if err != nil {
		h.writeServiceError(w, ctx, "failed to update worker", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toWorkerResponse(worker))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workerID, err := id.ParseWorkerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, workerID); err != nil {
		h.writeServiceError(w, ctx, "failed to delete worker", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workerID, err := id.ParseWorkerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	worker, err := h.service.Get(ctx, workerID)
	if err != nil {
		h.writeServiceError(w, ctx, "failed to get worker", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toWorkerResponse(worker))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	onlyActive := r.URL.Query().Get("active") == "true"
	workers, err := h.service.List(ctx, onlyActive)
	if err != nil {
		h.writeServiceError(w, ctx, "failed to list workers", err)
		return
	}

	out := make([]workerResponse, 0, len(workers))
	for _, worker := range workers {
		out = append(out, toWorkerResponse(worker))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"workers": out})
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
