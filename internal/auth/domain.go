package auth

import "time"

// User represents an authenticatable account, either a portal user scoped
// to a tenant or a platform administrator (TenantID 0).
type User struct {
	ID           int64
	TenantID     int64
	Email        string
	FullName     string
	PasswordHash string
	IsActive     bool
	// TenantSuspended blocks new logins without touching issued sessions.
	TenantSuspended bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
