package team

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/peopleflow/peopleflow/internal/platform/httpx"
	"github.com/peopleflow/peopleflow/internal/rbac"
	"github.com/peopleflow/peopleflow/internal/shared"
)

// Handler serves the team hierarchy endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Middleware

	remoteURL     string
	remoteTimeout time.Duration
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// UseRemoteGateway routes roster composition through a remote team API
// instead of the local database.
func (h *Handler) UseRemoteGateway(baseURL string, timeout time.Duration) {
	h.remoteURL = baseURL
	h.remoteTimeout = timeout
}

// MountRoutes registers team routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(shared.PermTeamView))
		r.Get("/team/my-team-members", h.myTeamMembers)
		r.Get("/team/{contextID}/team-members", h.teamMembers)
		r.Get("/team/members/{memberID}/candidates", h.memberCandidates)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(shared.PermCandidatesView))
		r.Get("/candidates/assignments/my-candidates", h.myCandidates)
	})
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(60, time.Minute, httprate.WithKeyFuncs(sessionRateKey)))
		r.Get("/team/context", h.teamContext)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(shared.PermUsersEdit))
		r.Post("/team/members/{memberID}/manager", h.assignManager)
		r.Delete("/team/members/{memberID}/manager", h.removeManager)
	})
}

func (h *Handler) myTeamMembers(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	members, err := h.service.TeamMembers(r.Context(), sess.TenantID, sess.UserID)
	if err != nil {
		h.logger.Error("my team members", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, membersEnvelope{TeamMembers: members, Total: len(members)})
}

func (h *Handler) teamMembers(w http.ResponseWriter, r *http.Request) {
	contextID, err := strconv.ParseInt(chi.URLParam(r, "contextID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "context id must be numeric")
		return
	}
	sess := shared.SessionFromContext(r.Context())
	members, err := h.service.TeamMembers(r.Context(), sess.TenantID, contextID)
	if err != nil {
		h.logger.Error("team members", slog.Any("error", err), slog.Int64("context_id", contextID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, membersEnvelope{TeamMembers: members, Total: len(members)})
}

func (h *Handler) memberCandidates(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(chi.URLParam(r, "memberID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "member id must be numeric")
		return
	}
	sess := shared.SessionFromContext(r.Context())
	candidates, err := h.service.MemberCandidates(r.Context(), sess.TenantID, memberID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("member candidates", slog.Any("error", err), slog.Int64("member_id", memberID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, candidatesEnvelope{Candidates: candidates, Total: len(candidates)})
}

func (h *Handler) myCandidates(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	candidates, err := h.service.MyCandidates(r.Context(), sess.TenantID, sess.UserID)
	if err != nil {
		h.logger.Error("my candidates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, candidatesEnvelope{Candidates: candidates, Total: len(candidates)})
}

// contextView is the JSON shape of a composed team view; errors travel
// as renderable strings, not transport failures.
type contextView struct {
	Mode             CandidateSource    `json:"mode"`
	TeamMembers      []MemberWithCounts `json:"team_members"`
	HasNoTeamMembers bool               `json:"has_no_team_members"`
	Candidates       []CandidateInfo    `json:"candidates"`
	TeamError        string             `json:"team_error,omitempty"`
	CandidatesError  string             `json:"candidates_error,omitempty"`
}

func (h *Handler) teamContext(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	resolver := rbac.NewResolver(sess)

	in := ComposeInput{
		IsRecruiter: resolver.IsRecruiter(),
		HasTeamView: resolver.HasTeamView(),
	}
	if raw := r.URL.Query().Get("context_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "context_id must be numeric")
			return
		}
		in.ContextID = &id
	}
	if raw := r.URL.Query().Get("selected_member_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "selected_member_id must be numeric")
			return
		}
		in.SelectedMemberID = &id
	}

	var gateway Gateway = NewLocalGateway(h.service, sess.TenantID, sess.UserID)
	if h.remoteURL != "" {
		gateway = NewHTTPGateway(h.remoteURL, sess.Token, h.remoteTimeout)
	}
	composer := NewComposer(gateway)
	view := composer.Compose(r.Context(), in)

	out := contextView{
		Mode:             view.Mode,
		TeamMembers:      view.TeamMembers,
		HasNoTeamMembers: view.HasNoTeamMembers,
		Candidates:       view.Candidates,
	}
	if view.TeamErr != nil {
		out.TeamError = shared.UserSafeMessage(view.TeamErr)
	}
	if view.CandidatesErr != nil {
		out.CandidatesError = shared.UserSafeMessage(view.CandidatesErr)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) assignManager(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(chi.URLParam(r, "memberID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "member id must be numeric")
		return
	}
	var in struct {
		ManagerID int64 `json:"manager_id"`
	}
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	sess := shared.SessionFromContext(r.Context())
	assignment, err := h.service.AssignManager(r.Context(), sess.TenantID, sess.UserID, memberID, in.ManagerID)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":    "manager assigned",
		"member_id":  assignment.MemberID,
		"manager_id": assignment.ManagerID,
		"changed_at": assignment.ChangedAt,
	})
}

func (h *Handler) removeManager(w http.ResponseWriter, r *http.Request) {
	memberID, err := strconv.ParseInt(chi.URLParam(r, "memberID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "member id must be numeric")
		return
	}
	sess := shared.SessionFromContext(r.Context())
	assignment, err := h.service.RemoveManager(r.Context(), sess.TenantID, sess.UserID, memberID)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":    "manager removed",
		"member_id":  assignment.MemberID,
		"changed_at": assignment.ChangedAt,
	})
}

func (h *Handler) respondMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrCycle) || errors.Is(err, ErrSelfManager):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Assignment", err.Error())
	case errors.Is(err, ErrBusy):
		httpx.RespondError(w, httpx.ErrConflict)
	default:
		h.logger.Error("team mutation", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func sessionRateKey(r *http.Request) (string, error) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		return "user:" + strconv.FormatInt(sess.UserID, 10), nil
	}
	return httprate.KeyByIP(r)
}
