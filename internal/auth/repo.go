package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peopleflow/peopleflow/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	RecordLogin(ctx context.Context, token string, userID int64, expiresAt time.Time, ip, ua string) error
	RecordLogout(ctx context.Context, token string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`SELECT u.id, u.tenant_id, u.email, u.full_name, u.password_hash, u.is_active,
		        COALESCE(t.status = 'suspended', FALSE),
		        u.created_at, u.updated_at
		 FROM users u
		 LEFT JOIN tenants t ON t.id = u.tenant_id
		 WHERE lower(u.email) = lower($1)`, email).
		Scan(&user.ID, &user.TenantID, &user.Email, &user.FullName, &user.PasswordHash, &user.IsActive, &user.TenantSuspended, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// RecordLogin persists session metadata for auditing. The redis store is
// authoritative; this row only supports support queries.
func (r *PGRepository) RecordLogin(ctx context.Context, token string, userID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO login_sessions (token, user_id, created_at, expires_at, ip, ua)
		 VALUES ($1, $2, NOW(), $3, NULLIF($4, ''), NULLIF($5, ''))`,
		token, userID, expiresAt.UTC(), ip, ua)
	return err
}

// RecordLogout marks the audit row as ended.
func (r *PGRepository) RecordLogout(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE login_sessions SET ended_at = NOW() WHERE token = $1 AND ended_at IS NULL`, token)
	return err
}

var _ Repository = (*PGRepository)(nil)
