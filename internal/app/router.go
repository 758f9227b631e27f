package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draftdesk/draftdesk/internal/orders"
	"github.com/draftdesk/draftdesk/internal/reference"
	"github.com/draftdesk/draftdesk/internal/vouchers"
)

// Pinger reports whether the books backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	VoucherHandler   *vouchers.Handler
	OrderHandler     *orders.Handler
	ReferenceHandler *reference.Handler
	Pool             *pgxpool.Pool
	Backend          Pinger
}

// NewRouter constructs the chi.Router with draftdesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Pool != nil {
			if err := params.Pool.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded","postgres":"down"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Backend != nil {
			if err := params.Backend.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded","backend":"down"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/vouchers", func(r chi.Router) {
		params.VoucherHandler.MountRoutes(r)
	})
	r.Route("/orders", func(r chi.Router) {
		params.OrderHandler.MountRoutes(r)
	})
	r.Route("/reference", func(r chi.Router) {
		params.ReferenceHandler.MountRoutes(r)
	})

	return r
}
