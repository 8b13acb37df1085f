package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context. Returns nil for
// unauthenticated requests.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// CurrentUserID returns the session user's ID, or 0 when unauthenticated.
func CurrentUserID(ctx context.Context) int64 {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.UserID
	}
	return 0
}

// CurrentTenantID returns the session tenant scope, or 0 when unauthenticated.
func CurrentTenantID(ctx context.Context) int64 {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.TenantID
	}
	return 0
}
