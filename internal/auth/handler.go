package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/peopleflow/peopleflow/internal/nav"
	"github.com/peopleflow/peopleflow/internal/platform/httpx"
	"github.com/peopleflow/peopleflow/internal/rbac"
	"github.com/peopleflow/peopleflow/internal/shared"
)

// Handler manages login, logout, and the session introspection endpoints
// the SPAs call on boot.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     *rbac.Service
	sessions *shared.SessionManager
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacService *rbac.Service, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacService, sessions: sessions}
}

// MountRoutes registers auth routes. Login is rate limited by IP.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Post("/auth/login", h.login)
	})
	r.Post("/auth/logout", h.logout)
	r.Get("/auth/me", h.me)
	r.Get("/me/navigation", h.navigation)
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID       int64                 `json:"id"`
	TenantID int64                 `json:"tenant_id"`
	Email    string                `json:"email"`
	FullName string                `json:"full_name"`
	Roles    []shared.RoleSnapshot `json:"roles"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	user, err := h.service.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	roles, err := h.rbac.UserRoles(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("load roles at login", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	snapshots := make([]shared.RoleSnapshot, 0, len(roles))
	for _, role := range roles {
		snapshots = append(snapshots, role.Snapshot())
	}

	token, err := h.sessions.Issue(r.Context(), shared.Session{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Email:    user.Email,
		Roles:    snapshots,
	})
	if err != nil {
		h.logger.Error("issue session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.RegisterSession(r.Context(), token, user.ID, time.Now().Add(h.sessions.TTL()), clientIP(r), r.UserAgent()); err != nil {
		h.logger.Warn("record login", slog.Any("error", err))
	}

	resolver := rbac.ResolverForRoles(snapshots)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": userPayload{
			ID:       user.ID,
			TenantID: user.TenantID,
			Email:    user.Email,
			FullName: user.FullName,
			Roles:    snapshots,
		},
		"capabilities": resolver.Capabilities(),
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.NoContent(w)
		return
	}
	if err := h.sessions.Destroy(r.Context(), sess.Token); err != nil {
		h.logger.Error("destroy session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.RemoveSession(r.Context(), sess.Token); err != nil {
		h.logger.Warn("record logout", slog.Any("error", err))
	}
	httpx.NoContent(w)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	resolver := rbac.NewResolver(sess)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user": userPayload{
			ID:       sess.UserID,
			TenantID: sess.TenantID,
			Email:    sess.Email,
			Roles:    sess.Roles,
		},
		"capabilities": resolver.Capabilities(),
	})
}

func (h *Handler) navigation(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	entries := nav.Default()
	if rbac.NewResolver(sess).HasRole(shared.RolePlatformAdmin) {
		entries = nav.Platform()
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"entries": nav.Filter(entries, sess.RoleNames()),
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
