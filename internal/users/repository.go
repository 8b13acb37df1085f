package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peopleflow/peopleflow/internal/platform/pgerr"
	"github.com/peopleflow/peopleflow/internal/shared"
)

var errDuplicateEmail = errors.New("email already registered for tenant")

// Repository persists tenant members.
type Repository interface {
	List(ctx context.Context, tenantID int64, filter ListFilter) ([]User, int, error)
	Get(ctx context.Context, tenantID, id int64) (User, error)
	Create(ctx context.Context, u User, passwordHash string) (User, error)
	Update(ctx context.Context, u User) (User, error)
}

// PGRepository is the pgx-backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = "id, tenant_id, email, full_name, is_active, manager_id, created_at, updated_at"

func (r *PGRepository) List(ctx context.Context, tenantID int64, filter ListFilter) ([]User, int, error) {
	conds := []string{"tenant_id = $1"}
	args := []any{tenantID}

	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conds = append(conds, fmt.Sprintf(
			"(lower(full_name) LIKE $%d OR lower(email) LIKE $%d)", len(args), len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT count(*) FROM users WHERE "+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s
		ORDER BY full_name LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	list := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, u)
	}
	return list, total, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, tenantID, id int64) (User, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE tenant_id = $1 AND id = $2", userColumns),
		tenantID, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	return u, err
}

func (r *PGRepository) Create(ctx context.Context, u User, passwordHash string) (User, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO users (tenant_id, email, full_name, password_hash, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, created_at, updated_at`,
		u.TenantID, u.Email, u.FullName, passwordHash,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if pgerr.IsUniqueViolation(err) {
		return User{}, errDuplicateEmail
	}
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	u.IsActive = true
	return u, nil
}

func (r *PGRepository) Update(ctx context.Context, u User) (User, error) {
	err := r.pool.QueryRow(ctx, `UPDATE users SET full_name = $1, is_active = $2, updated_at = now()
		WHERE tenant_id = $3 AND id = $4
		RETURNING updated_at`,
		u.FullName, u.IsActive, u.TenantID, u.ID,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.FullName, &u.IsActive,
		&u.ManagerID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}
