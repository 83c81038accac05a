package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"opsledger/internal/income/models"
	"opsledger/internal/platform/middleware"
	id "opsledger/pkg/domain"
	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler_mocks.go -package=mocks Service

// maxListLimit caps how many records one call may return.
const maxListLimit = 100

// Service defines the interface for income record operations.
type Service interface {
	RecordPayment(ctx context.Context, workerID id.WorkerID, date string, paidAmount float64, notes string) (*models.IncomeRecord, error)
	SetCompleted(ctx context.Context, recordID id.IncomeRecordID, completed bool) (*models.IncomeRecord, error)
	EditAmount(ctx context.Context, recordID id.IncomeRecordID, paidAmount float64) (*models.IncomeRecord, error)
	Get(ctx context.Context, recordID id.IncomeRecordID) (*models.IncomeRecord, error)
	List(ctx context.Context, limit int) ([]*models.IncomeRecord, error)
}

// Handler serves the income endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register wires the routes; all income operations are available to any
// authenticated user, the conditional admin gates live in the service.
func (h *Handler) Register(r chi.Router) {
	r.Get("/income", h.handleList)
	r.Get("/income/{id}", h.handleGet)
	r.Post("/income", h.handleRecordPayment)
	r.Post("/income/{id}/completion", h.handleSetCompleted)
	r.Patch("/income/{id}/amount", h.handleEditAmount)
}

type recordPaymentRequest struct {
	WorkerID   string  `json:"worker_id"`
	Date       string  `json:"date"`
	PaidAmount float64 `json:"paid_amount"`
	Notes      string  `json:"notes"`
}

func (r *recordPaymentRequest) Validate() error {
	if r.WorkerID == "" {
		return dErrors.New(dErrors.CodeValidation, "worker_id is required")
	}
	if r.Date == "" {
		return dErrors.New(dErrors.CodeValidation, "date is required")
	}
	if r.PaidAmount < 0 {
		return dErrors.New(dErrors.CodeValidation, "paid_amount must not be negative")
	}
	return nil
}

type setCompletedRequest struct {
	Completed bool `json:"completed"`
}

func (r *setCompletedRequest) Validate() error {
	return nil
}

type editAmountRequest struct {
	PaidAmount float64 `json:"paid_amount"`
}

func (r *editAmountRequest) Validate() error {
	if r.PaidAmount < 0 {
		return dErrors.New(dErrors.CodeValidation, "paid_amount must not be negative")
	}
	return nil
}

type incomeResponse struct {
	ID               string  `json:"id"`
	WorkerID         string  `json:"worker_id"`
	Date             string  `json:"date"`
	ExpectedAmount   float64 `json:"expected_amount"`
	PaidAmount       float64 `json:"paid_amount"`
	RemainingBalance float64 `json:"remaining_balance"`
	IsCompleted      bool    `json:"is_completed"`
	Notes            string  `json:"notes,omitempty"`
	CompletedAt      string  `json:"completed_at,omitempty"`
	CompletedBy      string  `json:"completed_by,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func toIncomeResponse(record *models.IncomeRecord) incomeResponse {
	resp := incomeResponse{
		ID:               record.ID.String(),
		WorkerID:         record.WorkerID.String(),
		Date:             record.Date,
		ExpectedAmount:   record.ExpectedAmount,
		PaidAmount:       record.PaidAmount,
		RemainingBalance: record.RemainingBalance(),
		IsCompleted:      record.IsCompleted,
		Notes:            record.Notes,
		CompletedBy:      record.CompletedBy,
		CreatedAt:        record.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:        record.UpdatedAt.Format(time.RFC3339Nano),
	}
	if record.CompletedAt != nil {
		resp.CompletedAt = record.CompletedAt.Format(time.RFC3339Nano)
	}
	return resp
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[recordPaymentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	workerID, err := id.ParseWorkerID(req.WorkerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.RecordPayment(ctx, workerID, req.Date, req.PaidAmount, req.Notes)
	if err != nil {
		h.writeServiceError(w, ctx, "failed to record payment", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIncomeResponse(record))
}

func (h *Handler) handleSetCompleted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	recordID, err := id.ParseIncomeRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[setCompletedRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.SetCompleted(ctx, recordID, req.Completed)
	if err != nil {
		h.writeServiceError(w, ctx, "failed to toggle completion", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIncomeResponse(record))
}

func (h *Handler) handleEditAmount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	recordID, err := id.ParseIncomeRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[editAmountRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.EditAmount(ctx, recordID, req.PaidAmount)
	if err != nil {
		h.writeServiceError(w, ctx, "failed to edit amount", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIncomeResponse(record))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recordID, err := id.ParseIncomeRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.Get(ctx, recordID)
	if err != nil {
		h.writeServiceError(w, ctx, "failed to get income record", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIncomeResponse(record))
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

	records, err := h.service.List(ctx, limit)
	if err != nil {
		h.writeServiceError(w, ctx, "failed to list income records", err)
		return
	}

	out := make([]incomeResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toIncomeResponse(record))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"income_records": out})
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
