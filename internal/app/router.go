package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/peopleflow/peopleflow/internal/admins"
	"github.com/peopleflow/peopleflow/internal/auth"
	"github.com/peopleflow/peopleflow/internal/candidates"
	"github.com/peopleflow/peopleflow/internal/matching"
	"github.com/peopleflow/peopleflow/internal/observability"
	"github.com/peopleflow/peopleflow/internal/openings"
	"github.com/peopleflow/peopleflow/internal/plans"
	"github.com/peopleflow/peopleflow/internal/rbac"
	"github.com/peopleflow/peopleflow/internal/shared"
	"github.com/peopleflow/peopleflow/internal/submissions"
	"github.com/peopleflow/peopleflow/internal/team"
	"github.com/peopleflow/peopleflow/internal/tenants"
	"github.com/peopleflow/peopleflow/internal/users"
	"github.com/peopleflow/peopleflow/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	AuthHandler        *auth.Handler
	RBACHandler        *rbac.Handler
	UsersHandler       *users.Handler
	CandidatesHandler  *candidates.Handler
	OpeningsHandler    *openings.Handler
	SubmissionsHandler *submissions.Handler
	MatchingHandler    *matching.Handler
	TeamHandler        *team.Handler
	TenantsHandler     *tenants.Handler
	PlansHandler       *plans.Handler
	AdminsHandler      *admins.Handler
	JobsHandler        *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with PeopleFlow defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Handlers mount their own path prefixes.
	params.AuthHandler.MountRoutes(r)
	if params.RBACHandler != nil {
		params.RBACHandler.MountRoutes(r)
	}
	if params.UsersHandler != nil {
		params.UsersHandler.MountRoutes(r)
	}
	if params.CandidatesHandler != nil {
		params.CandidatesHandler.MountRoutes(r)
	}
	if params.OpeningsHandler != nil {
		params.OpeningsHandler.MountRoutes(r)
	}
	if params.SubmissionsHandler != nil {
		params.SubmissionsHandler.MountRoutes(r)
	}
	if params.MatchingHandler != nil {
		params.MatchingHandler.MountRoutes(r)
	}
	if params.TeamHandler != nil {
		params.TeamHandler.MountRoutes(r)
	}
	if params.TenantsHandler != nil {
		params.TenantsHandler.MountRoutes(r)
	}
	if params.PlansHandler != nil {
		params.PlansHandler.MountRoutes(r)
	}
	if params.AdminsHandler != nil {
		params.AdminsHandler.MountRoutes(r)
	}
	if params.JobsHandler != nil {
		r.Route("/queue", params.JobsHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
