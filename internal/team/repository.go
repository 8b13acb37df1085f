package team

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peopleflow/peopleflow/internal/shared"
)

// Repository defines persistence operations for the team hierarchy.
type Repository interface {
	DirectReports(ctx context.Context, tenantID, managerID int64) ([]MemberWithCounts, error)
	MemberCandidates(ctx context.Context, tenantID, memberID int64) ([]CandidateInfo, error)
	MemberExists(ctx context.Context, tenantID, memberID int64) (bool, error)
	IsInSubtree(ctx context.Context, rootID, candidateID int64) (bool, error)
	SetManager(ctx context.Context, tenantID, memberID int64, managerID *int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) DirectReports(ctx context.Context, tenantID, managerID int64) ([]MemberWithCounts, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id,
		       u.full_name,
		       u.email,
		       COALESCE((SELECT ro.name FROM roles ro
		                 JOIN user_roles ur ON ur.role_id = ro.id
		                 WHERE ur.user_id = u.id
		                 ORDER BY ro.name LIMIT 1), '') AS role_name,
		       (SELECT COUNT(*) FROM candidates c
		        WHERE c.recruiter_id = u.id AND c.tenant_id = u.tenant_id) AS candidate_count,
		       (SELECT COUNT(*) FROM users m
		        WHERE m.manager_id = u.id AND m.is_active) AS team_member_count
		FROM users u
		WHERE u.tenant_id = $1 AND u.manager_id = $2 AND u.is_active
		ORDER BY u.full_name`, tenantID, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]MemberWithCounts, 0)
	for rows.Next() {
		var m MemberWithCounts
		if err := rows.Scan(&m.ID, &m.FullName, &m.Email, &m.RoleName, &m.CandidateCount, &m.TeamMemberCount); err != nil {
			return nil, err
		}
		m.HasTeamMembers = m.TeamMemberCount > 0
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *repository) MemberCandidates(ctx context.Context, tenantID, memberID int64) ([]CandidateInfo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.first_name, c.last_name, c.email, COALESCE(c.phone, ''),
		       c.onboarding_status, c.current_assignment
		FROM candidates c
		WHERE c.tenant_id = $1 AND c.recruiter_id = $2
		ORDER BY c.last_name, c.first_name`, tenantID, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]CandidateInfo, 0)
	for rows.Next() {
		var c CandidateInfo
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.OnboardingStatus, &c.CurrentAssignment); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *repository) MemberExists(ctx context.Context, tenantID, memberID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND tenant_id = $2 AND is_active)`,
		memberID, tenantID).Scan(&exists)
	return exists, err
}

// IsInSubtree walks the hierarchy downwards from rootID and reports
// whether candidateID is inside it. Used to refuse manager assignments
// that would create a cycle.
func (r *repository) IsInSubtree(ctx context.Context, rootID, candidateID int64) (bool, error) {
	var found bool
	err := r.pool.QueryRow(ctx, `
		WITH RECURSIVE subtree AS (
			SELECT id FROM users WHERE id = $1
			UNION ALL
			SELECT u.id FROM users u JOIN subtree s ON u.manager_id = s.id
		)
		SELECT EXISTS (SELECT 1 FROM subtree WHERE id = $2)`, rootID, candidateID).Scan(&found)
	return found, err
}

func (r *repository) SetManager(ctx context.Context, tenantID, memberID int64, managerID *int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET manager_id = $3, updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2`, memberID, tenantID, managerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
