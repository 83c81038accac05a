// Package httpapi wires the HTTP surface: global middleware, the public auth
// routes, the authenticated API, and the admin-gated subset.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	audithandler "opsledger/internal/audit/handler"
	dashboardhandler "opsledger/internal/dashboard/handler"
	expensehandler "opsledger/internal/expense/handler"
	identityhandler "opsledger/internal/identity/handler"
	incomehandler "opsledger/internal/income/handler"
	"opsledger/internal/platform/metrics"
	"opsledger/internal/platform/middleware"
	workerhandler "opsledger/internal/worker/handler"
)

const requestTimeout = 30 * time.Second

// Handlers collects the per-vertical handlers the router mounts.
type Handlers struct {
	Identity  *identityhandler.Handler
	Worker    *workerhandler.Handler
	Income    *incomehandler.Handler
	Expense   *expensehandler.Handler
	Dashboard *dashboardhandler.Handler
	Audit     *audithandler.Handler
}

// Deps carries the cross-cutting pieces the middleware chain needs.
type Deps struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	JWTValidator middleware.JWTValidator
	RoleResolver middleware.RoleResolver
}

// NewRouter builds the chi router. Route groups, outermost first:
// public (healthz, metrics, auth), authenticated (everything else), and
// admin (worker create/delete, expense delete, audit trail reads).
func NewRouter(h Handlers, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)

	// Public surface.
	r.Get("/healthz", handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	h.Identity.Register(r)

	// Authenticated surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.JWTValidator, deps.RoleResolver, deps.Logger))

		h.Worker.Register(r)
		h.Income.Register(r)
		h.Expense.Register(r)
		h.Dashboard.Register(r)

		// Admin surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(deps.Logger))

			h.Worker.RegisterAdmin(r)
			h.Expense.RegisterAdmin(r)
			h.Audit.Register(r)
		})
	})

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
