package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dashboardservice "opsledger/internal/dashboard/service"
	"opsledger/internal/platform/middleware"
	dErrors "opsledger/pkg/domain-errors"
	"opsledger/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler_mocks.go -package=mocks Service

// Service defines the interface for the dashboard summary.
type Service interface {
	Summarize(ctx context.Context) (*dashboardservice.Summary, error)
}

// Handler serves the dashboard endpoint.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register wires the summary route.
func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard/summary", h.handleSummary)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.service.Summarize(ctx)
	if err != nil {
		if dErrors.GetCode(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "failed to build dashboard summary",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}
