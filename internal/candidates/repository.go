package candidates

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

var errDuplicateEmail = errors.New("candidate email already registered for tenant")

// Repository persists candidates.
type Repository interface {
	List(ctx context.Context, tenantID int64, filter ListFilter) ([]Candidate, int, error)
	Get(ctx context.Context, tenantID, id int64) (Candidate, error)
	Create(ctx context.Context, c Candidate) (Candidate, error)
	Update(ctx context.Context, c Candidate) (Candidate, error)
	Delete(ctx context.Context, tenantID, id int64) error
	AssignRecruiter(ctx context.Context, tenantID, id int64, recruiterID *int64) error
	SetStatus(ctx context.Context, tenantID, id int64, status OnboardingStatus) error
}

// PGRepository is the pgx-backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const candidateColumns = `id, tenant_id, first_name, last_name, email, phone, skills,
	onboarding_status, current_assignment, recruiter_id, created_at, updated_at`

func (r *PGRepository) List(ctx context.Context, tenantID int64, filter ListFilter) ([]Candidate, int, error) {
	conds := []string{"tenant_id = $1"}
	args := []any{tenantID}

	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conds = append(conds, fmt.Sprintf(
			"(lower(first_name) LIKE $%d OR lower(last_name) LIKE $%d OR lower(email) LIKE $%d)",
			len(args), len(args), len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("onboarding_status = $%d", len(args)))
	}
	if filter.RecruiterID != nil {
		args = append(args, *filter.RecruiterID)
		conds = append(conds, fmt.Sprintf("recruiter_id = $%d", len(args)))
	}

	where := strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT count(*) FROM candidates WHERE "+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM candidates WHERE %s
		ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`,
		candidateColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	list := make([]Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, tenantID, id int64) (Candidate, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM candidates WHERE tenant_id = $1 AND id = $2", candidateColumns),
		tenantID, id)
	c, err := scanCandidate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Candidate{}, shared.ErrNotFound
	}
	return c, err
}

func (r *PGRepository) Create(ctx context.Context, c Candidate) (Candidate, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO candidates
		(tenant_id, first_name, last_name, email, phone, skills, onboarding_status, recruiter_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		c.TenantID, c.FirstName, c.LastName, c.Email, c.Phone, c.Skills,
		string(c.OnboardingStatus), c.RecruiterID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if pgerr.IsUniqueViolation(err) {
		return Candidate{}, errDuplicateEmail
	}
	if err != nil {
		return Candidate{}, fmt.Errorf("insert candidate: %w", err)
	}
	return c, nil
}

func (r *PGRepository) Update(ctx context.Context, c Candidate) (Candidate, error) {
	err := r.pool.QueryRow(ctx, `UPDATE candidates SET
		first_name = $1, last_name = $2, email = $3, phone = $4, skills = $5, updated_at = now()
		WHERE tenant_id = $6 AND id = $7
		RETURNING updated_at`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.Skills, c.TenantID, c.ID,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Candidate{}, shared.ErrNotFound
	}
	if pgerr.IsUniqueViolation(err) {
		return Candidate{}, errDuplicateEmail
	}
	if err != nil {
		return Candidate{}, fmt.Errorf("update candidate: %w", err)
	}
	return c, nil
}

func (r *PGRepository) Delete(ctx context.Context, tenantID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM candidates WHERE tenant_id = $1 AND id = $2", tenantID, id)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) AssignRecruiter(ctx context.Context, tenantID, id int64, recruiterID *int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE candidates SET recruiter_id = $1, updated_at = now()
		WHERE tenant_id = $2 AND id = $3`, recruiterID, tenantID, id)
	if pgerr.IsForeignKeyViolation(err) {
		return shared.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("assign recruiter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) SetStatus(ctx context.Context, tenantID, id int64, status OnboardingStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE candidates SET onboarding_status = $1, updated_at = now()
		WHERE tenant_id = $2 AND id = $3`, string(status), tenantID, id)
	if err != nil {
		return fmt.Errorf("set onboarding status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCandidate(row pgx.Row) (Candidate, error) {
	var (
		c      Candidate
		status string
	)
	err := row.Scan(&c.ID, &c.TenantID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Skills, &status, &c.CurrentAssignment, &c.RecruiterID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Candidate{}, err
	}
	c.OnboardingStatus = OnboardingStatus(status)
	if c.Skills == nil {
		c.Skills = []string{}
	}
	return c, nil
}
