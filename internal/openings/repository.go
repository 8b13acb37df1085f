package openings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peopleflow/peopleflow/internal/shared"
)

// Repository persists job postings.
type Repository interface {
	List(ctx context.Context, tenantID int64, filter ListFilter) ([]Opening, int, error)
	Get(ctx context.Context, tenantID, id int64) (Opening, error)
	Create(ctx context.Context, o Opening) (Opening, error)
	Update(ctx context.Context, o Opening) (Opening, error)
	Delete(ctx context.Context, tenantID, id int64) error
	SetStatus(ctx context.Context, tenantID, id int64, status Status) error
}

// PGRepository is the pgx-backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const openingColumns = `id, tenant_id, title, description, department, location,
	employment_type, skills, status, created_by, created_at, updated_at`

func (r *PGRepository) List(ctx context.Context, tenantID int64, filter ListFilter) ([]Opening, int, error) {
	conds := []string{"tenant_id = $1"}
	args := []any{tenantID}

	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conds = append(conds, fmt.Sprintf("lower(title) LIKE $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		conds = append(conds, fmt.Sprintf("department = $%d", len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT count(*) FROM openings WHERE "+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count openings: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM openings WHERE %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		openingColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list openings: %w", err)
	}
	defer rows.Close()

	list := make([]Opening, 0)
	for rows.Next() {
		o, err := scanOpening(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, tenantID, id int64) (Opening, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM openings WHERE tenant_id = $1 AND id = $2", openingColumns),
		tenantID, id)
	o, err := scanOpening(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Opening{}, shared.ErrNotFound
	}
	return o, err
}

func (r *PGRepository) Create(ctx context.Context, o Opening) (Opening, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO openings
		(tenant_id, title, description, department, location, employment_type, skills, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		o.TenantID, o.Title, o.Description, o.Department, o.Location,
		o.EmploymentType, o.Skills, string(o.Status), o.CreatedBy,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Opening{}, fmt.Errorf("insert opening: %w", err)
	}
	return o, nil
}

func (r *PGRepository) Update(ctx context.Context, o Opening) (Opening, error) {
	err := r.pool.QueryRow(ctx, `UPDATE openings SET
		title = $1, description = $2, department = $3, location = $4,
		employment_type = $5, skills = $6, updated_at = now()
		WHERE tenant_id = $7 AND id = $8
		RETURNING updated_at`,
		o.Title, o.Description, o.Department, o.Location, o.EmploymentType,
		o.Skills, o.TenantID, o.ID,
	).Scan(&o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Opening{}, shared.ErrNotFound
	}
	if err != nil {
		return Opening{}, fmt.Errorf("update opening: %w", err)
	}
	return o, nil
}

func (r *PGRepository) Delete(ctx context.Context, tenantID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM openings WHERE tenant_id = $1 AND id = $2", tenantID, id)
	if err != nil {
		return fmt.Errorf("delete opening: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) SetStatus(ctx context.Context, tenantID, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE openings SET status = $1, updated_at = now()
		WHERE tenant_id = $2 AND id = $3`, string(status), tenantID, id)
	if err != nil {
		return fmt.Errorf("set opening status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanOpening(row pgx.Row) (Opening, error) {
	var (
		o      Opening
		status string
	)
	err := row.Scan(&o.ID, &o.TenantID, &o.Title, &o.Description, &o.Department,
		&o.Location, &o.EmploymentType, &o.Skills, &status, &o.CreatedBy,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Opening{}, err
	}
	o.Status = Status(status)
	if o.Skills == nil {
		o.Skills = []string{}
	}
	return o, nil
}
