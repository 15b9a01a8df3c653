package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cartage-systems/cartage/internal/dispatch"
	"github.com/cartage-systems/cartage/internal/fleet"
	"github.com/cartage-systems/cartage/internal/intake"
	"github.com/cartage-systems/cartage/internal/orders"
	"github.com/cartage-systems/cartage/internal/staging"
	"github.com/cartage-systems/cartage/internal/users"
	"github.com/cartage-systems/cartage/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	IntakeHandler   *intake.Handler
	OrdersHandler   *orders.Handler
	StagingHandler  *staging.Handler
	DispatchHandler *dispatch.Handler
	UsersHandler    *users.Handler
	FleetHandler    *fleet.Handler
	JobsHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router with Cartage defaults.
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
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/intake", params.IntakeHandler.MountRoutes)
		r.Route("/orders", params.OrdersHandler.MountRoutes)
		r.Route("/staging", params.StagingHandler.MountRoutes)
		r.Route("/dispatch", params.DispatchHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/fleet", params.FleetHandler.MountRoutes)
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
