package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RoleSnapshot captures one role held by the session user, with the
// permission names it grants. Snapshots are taken at login and refreshed
// on role mutations, so request-time checks never hit the database.
type RoleSnapshot struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Permissions []string `json:"permissions"`
}

// Session is the per-request view of an authenticated bearer session.
type Session struct {
	Token    string         `json:"-"`
	UserID   int64          `json:"user_id"`
	TenantID int64          `json:"tenant_id"`
	Email    string         `json:"email"`
	Roles    []RoleSnapshot `json:"roles"`
	IssuedAt time.Time      `json:"issued_at"`
}

// RoleNames returns the names of the session user's roles.
func (s *Session) RoleNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Roles))
	for _, r := range s.Roles {
		names = append(names, r.Name)
	}
	return names
}

// SessionManager stores bearer sessions in Redis. The bearer token is the
// opaque session ID; no state lives client-side.
type SessionManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, ttl time.Duration) *SessionManager {
	return &SessionManager{client: client, ttl: ttl}
}

// ErrNoSession indicates the request carries no valid session token.
var ErrNoSession = errors.New("no active session")

// Issue creates and persists a session, returning the bearer token.
func (sm *SessionManager) Issue(ctx context.Context, sess Session) (string, error) {
	token := uuid.NewString()
	sess.Token = token
	sess.IssuedAt = time.Now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	if err := sm.client.Set(ctx, sm.redisKey(token), data, sm.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Load resolves the session for a request. A missing or unknown token
// yields ErrNoSession, not an error the caller should 500 on.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	token := BearerToken(r)
	if token == "" {
		return nil, ErrNoSession
	}
	payload, err := sm.client.Get(ctx, sm.redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, err
	}
	sess.Token = token
	// Sliding expiration: any authenticated request extends the session.
	_ = sm.client.Expire(ctx, sm.redisKey(token), sm.ttl).Err()
	return &sess, nil
}

// Refresh rewrites a stored session, keeping its token. Used when role
// assignments change mid-session.
func (sm *SessionManager) Refresh(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return ErrNoSession
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return sm.client.Set(ctx, sm.redisKey(sess.Token), data, sm.ttl).Err()
}

// Destroy removes the session from the store.
func (sm *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := sm.client.Del(ctx, sm.redisKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (sm *SessionManager) redisKey(token string) string {
	return "session:" + token
}
