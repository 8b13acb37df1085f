package tenants

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peopleflow/peopleflow/internal/platform/pgerr"
	"github.com/peopleflow/peopleflow/internal/shared"
)

var errDuplicateSlug = errors.New("tenant slug already taken")

// Repository persists tenants.
type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Tenant, int, error)
	Get(ctx context.Context, id int64) (Tenant, error)
	Create(ctx context.Context, t Tenant) (Tenant, error)
	Update(ctx context.Context, t Tenant) (Tenant, error)
	SetStatus(ctx context.Context, id int64, status Status) error
	Stats(ctx context.Context, id int64) (Stats, error)
}

// PGRepository is the pgx-backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const tenantColumns = "id, name, slug, plan_id, status, created_at, updated_at"

func (r *PGRepository) List(ctx context.Context, limit, offset int) ([]Tenant, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM tenants").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tenants: %w", err)
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM tenants ORDER BY name LIMIT $1 OFFSET $2", tenantColumns),
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	list := make([]Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Tenant, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM tenants WHERE id = $1", tenantColumns), id)
	t, err := scanTenant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tenant{}, shared.ErrNotFound
	}
	return t, err
}

func (r *PGRepository) Create(ctx context.Context, t Tenant) (Tenant, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO tenants (name, slug, plan_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		t.Name, t.Slug, t.PlanID, string(t.Status),
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if pgerr.IsUniqueViolation(err) {
		return Tenant{}, errDuplicateSlug
	}
	if pgerr.IsForeignKeyViolation(err) {
		return Tenant{}, shared.ErrNotFound
	}
	if err != nil {
		return Tenant{}, fmt.Errorf("insert tenant: %w", err)
	}
	return t, nil
}

func (r *PGRepository) Update(ctx context.Context, t Tenant) (Tenant, error) {
	err := r.pool.QueryRow(ctx, `UPDATE tenants SET name = $1, plan_id = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at`,
		t.Name, t.PlanID, t.ID,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tenant{}, shared.ErrNotFound
	}
	if pgerr.IsForeignKeyViolation(err) {
		return Tenant{}, shared.ErrNotFound
	}
	if err != nil {
		return Tenant{}, fmt.Errorf("update tenant: %w", err)
	}
	return t, nil
}

func (r *PGRepository) SetStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE tenants SET status = $1, updated_at = now() WHERE id = $2",
		string(status), id)
	if err != nil {
		return fmt.Errorf("set tenant status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) Stats(ctx context.Context, id int64) (Stats, error) {
	stats := Stats{TenantID: id}
	err := r.pool.QueryRow(ctx, `SELECT
			(SELECT count(*) FROM users WHERE tenant_id = $1),
			(SELECT count(*) FROM candidates WHERE tenant_id = $1),
			(SELECT count(*) FROM openings WHERE tenant_id = $1),
			(SELECT count(*) FROM submissions WHERE tenant_id = $1),
			(SELECT count(*) FROM submissions WHERE tenant_id = $1 AND status = 'hired')`,
		id,
	).Scan(&stats.UserCount, &stats.CandidateCount, &stats.OpeningCount,
		&stats.SubmissionCount, &stats.HireCount)
	if err != nil {
		return Stats{}, fmt.Errorf("tenant stats: %w", err)
	}
	return stats, nil
}

func scanTenant(row pgx.Row) (Tenant, error) {
	var (
		t      Tenant
		status string
	)
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.PlanID, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Tenant{}, err
	}
	t.Status = Status(status)
	return t, nil
}
