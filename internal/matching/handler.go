package matching

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/peopleflow/peopleflow/internal/platform/httpx"
	"github.com/peopleflow/peopleflow/internal/rbac"
	"github.com/peopleflow/peopleflow/internal/shared"
)

// Handler exposes match rankings.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Middleware
	enqueue func(ctx context.Context, tenantID int64) error
}

func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// SetRefreshEnqueuer installs the callback that queues a background
// recomputation of the tenant's cached match sets.
func (h *Handler) SetRefreshEnqueuer(fn func(ctx context.Context, tenantID int64) error) {
	h.enqueue = fn
}

// MountRoutes registers the match listing under /jobs.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAll(shared.PermJobsView, shared.PermCandidatesView))
		r.Get("/jobs/{id}/matches", h.matches)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(shared.PermJobsEdit))
		r.Post("/jobs/matches/refresh", h.refresh)
	})
}

func (h *Handler) matches(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "job id must be numeric")
		return
	}
	matches, err := h.service.MatchesForOpening(r.Context(), sess.TenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("match ranking", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"matches": matches, "total": len(matches)})
}

// refresh queues an asynchronous recomputation for the session tenant.
// Without a queue wired in, the recomputation happens inline.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if h.enqueue == nil {
		n, err := h.service.Refresh(r.Context(), sess.TenantID)
		if err != nil {
			h.logger.Error("match refresh", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"status": "refreshed", "openings": n})
		return
	}
	if err := h.enqueue(r.Context(), sess.TenantID); err != nil {
		h.logger.Error("enqueue match refresh", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"status": "queued"})
}
