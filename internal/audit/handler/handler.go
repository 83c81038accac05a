package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"opsledger/internal/audit"
	"opsledger/internal/platform/middleware"
	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/platform/httputil"
)

// maxPageSize caps how many entries one read returns. The dashboard log
// screen never shows more than this.
const maxPageSize = 200

//go:generate mockgen -source=handler.go -destination=mocks/handler_mocks.go -package=mocks Service

// Service defines the interface for reading the audit trail.
type Service interface {
	List(ctx context.Context, q audit.Query) ([]audit.Entry, error)
}

// Handler serves the audit trail read endpoint. The router guards it with
// RequireAdmin, so a non-admin request is rejected before any query runs.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new audit Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the audit routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/logs", h.handleListLogs)
}

type entryResponse struct {
	ID              string         `json:"id"`
	ActionType      string         `json:"action_type"`
	RecordType      string         `json:"record_type"`
	RecordID        string         `json:"record_id"`
	WorkerID        string         `json:"worker_id,omitempty"`
	PerformedBy     string         `json:"performed_by"`
	PerformedByRole string         `json:"performed_by_role"`
	PreviousValue   map[string]any `json:"previous_value,omitempty"`
	NewValue        map[string]any `json:"new_value,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	CreatedAt       string         `json:"created_at"`
}

type listResponse struct {
	Logs []entryResponse `json:"logs"`
}

func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	q, err := queryFromParams(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid audit query",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.List(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit logs",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list audit logs"))
		return
	}

	resp := listResponse{Logs: make([]entryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Logs = append(resp.Logs, entryResponse{
			ID:              e.ID.String(),
			ActionType:      string(e.Action),
			RecordType:      string(e.RecordType),
			RecordID:        e.RecordID,
			WorkerID:        e.WorkerID,
			PerformedBy:     e.PerformedBy,
			PerformedByRole: string(e.PerformedByRole),
			PreviousValue:   e.PreviousValue,
			NewValue:        e.NewValue,
			Reason:          e.Reason,
			CreatedAt:       e.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func queryFromParams(r *http.Request) (audit.Query, error) {
	params := r.URL.Query()
	q := audit.Query{Limit: maxPageSize}

	if v := params.Get("record_type"); v != "" {
		rt := audit.RecordType(v)
		if !rt.IsValid() {
			return audit.Query{}, dErrors.Newf(dErrors.CodeBadRequest, "unknown record_type %q", v)
		}
		q.RecordType = rt
	}
	if v := params.Get("action"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			a := audit.Action(strings.TrimSpace(raw))
			if !a.IsValid() {
				return audit.Query{}, dErrors.Newf(dErrors.CodeBadRequest, "unknown action %q", string(a))
			}
			q.Actions = append(q.Actions, a)
		}
	}
	q.RecordID = params.Get("record_id")
	q.WorkerID = params.Get("worker_id")

	if v := params.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return audit.Query{}, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer")
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
		q.Limit = limit
	}
	return q, nil
}
