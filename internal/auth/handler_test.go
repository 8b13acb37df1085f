package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/peopleflow/peopleflow/internal/rbac"
	"github.com/peopleflow/peopleflow/internal/shared"
)

type memoryAuthRepo struct {
	users map[string]*User
}

func (r *memoryAuthRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (r *memoryAuthRepo) RecordLogin(ctx context.Context, token string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (r *memoryAuthRepo) RecordLogout(ctx context.Context, token string) error { return nil }

type memoryRBACRepo struct {
	roles map[int64][]rbac.Role
}

func (r *memoryRBACRepo) ListRoles(ctx context.Context) ([]rbac.Role, error) { return nil, nil }
func (r *memoryRBACRepo) GetRole(ctx context.Context, id int64) (rbac.Role, error) {
	return rbac.Role{}, shared.ErrNotFound
}
func (r *memoryRBACRepo) FindRoleByName(ctx context.Context, name string) (rbac.Role, error) {
	return rbac.Role{}, shared.ErrNotFound
}
func (r *memoryRBACRepo) CreateRole(ctx context.Context, name, displayName string) (rbac.Role, error) {
	return rbac.Role{}, nil
}
func (r *memoryRBACRepo) UpdateRole(ctx context.Context, id int64, name, displayName string) (rbac.Role, error) {
	return rbac.Role{}, nil
}
func (r *memoryRBACRepo) DeleteRole(ctx context.Context, id int64) error { return nil }
func (r *memoryRBACRepo) ListPermissions(ctx context.Context) ([]rbac.Permission, error) {
	return nil, nil
}
func (r *memoryRBACRepo) EnsurePermission(ctx context.Context, name rbac.PermissionName, displayName, category string) (rbac.Permission, error) {
	return rbac.Permission{}, nil
}
func (r *memoryRBACRepo) ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	return nil
}
func (r *memoryRBACRepo) AssignRole(ctx context.Context, userID, roleID int64) error { return nil }
func (r *memoryRBACRepo) RemoveRole(ctx context.Context, userID, roleID int64) error { return nil }
func (r *memoryRBACRepo) UserRoles(ctx context.Context, userID int64) ([]rbac.Role, error) {
	return r.roles[userID], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T) (*Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	authRepo := &memoryAuthRepo{users: map[string]*User{
		"jane@acme.test": {ID: 1, TenantID: 10, Email: "jane@acme.test", FullName: "Jane Doe", PasswordHash: string(hash), IsActive: true},
		"sam@frozen.test": {ID: 2, TenantID: 11, Email: "sam@frozen.test", FullName: "Sam Cole",
			PasswordHash: string(hash), IsActive: true, TenantSuspended: true},
	}}
	rbacRepo := &memoryRBACRepo{roles: map[int64][]rbac.Role{
		1: {{ID: 5, Name: shared.RoleRecruiter, DisplayName: "Recruiter"}},
	}}

	sessions := shared.NewSessionManager(client, time.Hour)
	logger := testLogger()
	h := NewHandler(logger, NewService(authRepo), rbac.NewService(rbacRepo), sessions)
	return h, sessions
}

func TestLoginIssuesBearerSession(t *testing.T) {
	h, sessions := newTestHandler(t)
	router := chi.NewRouter()
	h.MountRoutes(router)

	body := bytes.NewBufferString(`{"email":"jane@acme.test","password":"secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Token        string `json:"token"`
		Capabilities struct {
			CanViewTeam bool `json:"can_view_team"`
		} `json:"capabilities"`
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	require.Equal(t, "jane@acme.test", out.User.Email)
	require.False(t, out.Capabilities.CanViewTeam, "recruiter has no team view")

	loaded, err := sessions.Load(context.Background(), authedRequest(out.Token))
	require.NoError(t, err)
	require.Equal(t, int64(1), loaded.UserID)
	require.Equal(t, []string{shared.RoleRecruiter}, loaded.RoleNames())
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h, _ := newTestHandler(t)
	router := chi.NewRouter()
	h.MountRoutes(router)

	body := bytes.NewBufferString(`{"email":"jane@acme.test","password":"nope"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsSuspendedTenantMembers(t *testing.T) {
	h, _ := newTestHandler(t)
	router := chi.NewRouter()
	h.MountRoutes(router)

	body := bytes.NewBufferString(`{"email":"sam@frozen.test","password":"secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeRequiresSession(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	h.me(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNavigationFiltersByRole(t *testing.T) {
	h, _ := newTestHandler(t)

	sess := &shared.Session{
		UserID: 1,
		Roles:  []shared.RoleSnapshot{{Name: shared.RoleRecruiter}},
	}
	req := httptest.NewRequest(http.MethodGet, "/me/navigation", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	h.navigation(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Entries []struct {
			ID string `json:"id"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	ids := make([]string, 0, len(out.Entries))
	for _, e := range out.Entries {
		ids = append(ids, e.ID)
	}
	require.Contains(t, ids, "candidates")
	require.NotContains(t, ids, "team")
	require.NotContains(t, ids, "users")
}

func authedRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
