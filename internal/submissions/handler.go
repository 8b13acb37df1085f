package submissions

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/peopleflow/peopleflow/internal/platform/httpx"
	"github.com/peopleflow/peopleflow/internal/rbac"
	"github.com/peopleflow/peopleflow/internal/shared"
)

// Handler exposes submission endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers submission routes under /submissions.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/submissions", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.guard.RequireAny(shared.PermSubmissionsView))
			r.Get("/", h.list)
			r.Get("/{id}", h.get)
			r.Get("/{id}/history", h.history)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.RequireAny(shared.PermSubmissionsCreate))
			r.Post("/", h.create)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.guard.RequireAny(shared.PermSubmissionsReview))
			r.Put("/{id}/status", h.advance)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	var filter ListFilter
	if raw := r.URL.Query().Get("opening_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "opening_id must be numeric")
			return
		}
		filter.OpeningID = &id
	}
	if raw := r.URL.Query().Get("candidate_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "candidate_id must be numeric")
			return
		}
		filter.CandidateID = &id
	}
	filter.Status = Status(r.URL.Query().Get("status"))
	if filter.Status != "" && !filter.Status.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "unknown pipeline stage")
		return
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		filter.Limit, _ = strconv.Atoi(raw)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		filter.Offset, _ = strconv.Atoi(raw)
	}

	list, total, err := h.service.List(r.Context(), sess.TenantID, filter)
	if err != nil {
		h.logger.Error("list submissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"submissions": list, "total": total})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	sub, err := h.service.Get(r.Context(), sess.TenantID, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	changes, err := h.service.History(r.Context(), sess.TenantID, id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"history": changes, "total": len(changes)})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	key := r.Header.Get("Idempotency-Key")
	sub, err := h.service.Create(r.Context(), sess.TenantID, sess.UserID, in, key)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sub)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var in struct {
		Status Status `json:"status"`
		Note   string `json:"note"`
	}
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	sub, err := h.service.Advance(r.Context(), sess.TenantID, sess.UserID, id, in.Status, in.Note)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sub)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "submission id must be numeric")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, errDuplicateSubmission):
		httpx.RespondError(w, httpx.ErrDuplicate)
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.RespondError(w, httpx.ErrConflict)
	case errors.Is(err, ErrBadTransition):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Transition", err.Error())
	case errors.Is(err, httpx.ErrValidation):
		httpx.RespondError(w, err)
	default:
		h.logger.Error("submissions service", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
