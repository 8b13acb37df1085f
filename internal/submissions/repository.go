package submissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peopleflow/peopleflow/internal/platform/db"
	"github.com/peopleflow/peopleflow/internal/platform/pgerr"
	"github.com/peopleflow/peopleflow/internal/shared"
)

var errDuplicateSubmission = errors.New("candidate already submitted to this opening")

// ListFilter narrows submission listings.
type ListFilter struct {
	OpeningID   *int64
	CandidateID *int64
	Status      Status
	Limit       int
	Offset      int
}

// Repository persists submissions and their status history.
type Repository interface {
	List(ctx context.Context, tenantID int64, filter ListFilter) ([]Submission, int, error)
	Get(ctx context.Context, tenantID, id int64) (Submission, error)
	Create(ctx context.Context, s Submission) (Submission, error)
	SetStatus(ctx context.Context, tenantID, id int64, from, to Status, changedBy int64, note string) error
	History(ctx context.Context, tenantID, id int64) ([]StatusChange, error)
	Notification(ctx context.Context, tenantID, id int64) (Notification, error)
}

// PGRepository is the pgx-backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const submissionColumns = `id, tenant_id, opening_id, candidate_id, status, notes,
	submitted_by, created_at, updated_at`

func (r *PGRepository) List(ctx context.Context, tenantID int64, filter ListFilter) ([]Submission, int, error) {
	conds := []string{"tenant_id = $1"}
	args := []any{tenantID}

	if filter.OpeningID != nil {
		args = append(args, *filter.OpeningID)
		conds = append(conds, fmt.Sprintf("opening_id = $%d", len(args)))
	}
	if filter.CandidateID != nil {
		args = append(args, *filter.CandidateID)
		conds = append(conds, fmt.Sprintf("candidate_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT count(*) FROM submissions WHERE "+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE %s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		submissionColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	list := make([]Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, tenantID, id int64) (Submission, error) {
	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM submissions WHERE tenant_id = $1 AND id = $2", submissionColumns),
		tenantID, id)
	s, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, shared.ErrNotFound
	}
	return s, err
}

func (r *PGRepository) Create(ctx context.Context, s Submission) (Submission, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO submissions
		(tenant_id, opening_id, candidate_id, status, notes, submitted_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		s.TenantID, s.OpeningID, s.CandidateID, string(s.Status), s.Notes, s.SubmittedBy,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if pgerr.IsUniqueViolation(err) {
		return Submission{}, errDuplicateSubmission
	}
	if pgerr.IsForeignKeyViolation(err) {
		return Submission{}, shared.ErrNotFound
	}
	if err != nil {
		return Submission{}, fmt.Errorf("insert submission: %w", err)
	}
	return s, nil
}

// SetStatus moves the stage and appends history in one transaction. The
// from clause guards against lost updates under concurrent reviewers.
func (r *PGRepository) SetStatus(ctx context.Context, tenantID, id int64, from, to Status, changedBy int64, note string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE submissions SET status = $1, updated_at = now()
			WHERE tenant_id = $2 AND id = $3 AND status = $4`,
			string(to), tenantID, id, string(from))
		if err != nil {
			return fmt.Errorf("update submission status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}

		_, err = tx.Exec(ctx, `INSERT INTO submission_status_changes
			(submission_id, from_status, to_status, changed_by, note)
			VALUES ($1, $2, $3, $4, $5)`,
			id, string(from), string(to), changedBy, note)
		if err != nil {
			return fmt.Errorf("append status history: %w", err)
		}
		return nil
	})
}

// Notification resolves the addressing details for a status change mail.
func (r *PGRepository) Notification(ctx context.Context, tenantID, id int64) (Notification, error) {
	var n Notification
	err := r.pool.QueryRow(ctx, `SELECT u.email, c.first_name || ' ' || c.last_name, o.title
		FROM submissions s
		JOIN users u ON u.id = s.submitted_by
		JOIN candidates c ON c.id = s.candidate_id
		JOIN openings o ON o.id = s.opening_id
		WHERE s.tenant_id = $1 AND s.id = $2`,
		tenantID, id,
	).Scan(&n.SubmitterEmail, &n.CandidateName, &n.OpeningTitle)
	if errors.Is(err, pgx.ErrNoRows) {
		return Notification{}, shared.ErrNotFound
	}
	if err != nil {
		return Notification{}, fmt.Errorf("load submission notification: %w", err)
	}
	return n, nil
}

func (r *PGRepository) History(ctx context.Context, tenantID, id int64) ([]StatusChange, error) {
	rows, err := r.pool.Query(ctx, `SELECT h.id, h.submission_id, h.from_status, h.to_status,
			h.changed_by, h.note, h.changed_at
		FROM submission_status_changes h
		JOIN submissions s ON s.id = h.submission_id
		WHERE s.tenant_id = $1 AND h.submission_id = $2
		ORDER BY h.changed_at`, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("submission history: %w", err)
	}
	defer rows.Close()

	history := make([]StatusChange, 0)
	for rows.Next() {
		var (
			c        StatusChange
			from, to string
		)
		if err := rows.Scan(&c.ID, &c.SubmissionID, &from, &to, &c.ChangedBy, &c.Note, &c.ChangedAt); err != nil {
			return nil, err
		}
		c.FromStatus = Status(from)
		c.ToStatus = Status(to)
		history = append(history, c)
	}
	return history, rows.Err()
}

func scanSubmission(row pgx.Row) (Submission, error) {
	var (
		s      Submission
		status string
	)
	err := row.Scan(&s.ID, &s.TenantID, &s.OpeningID, &s.CandidateID, &status,
		&s.Notes, &s.SubmittedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Submission{}, err
	}
	s.Status = Status(status)
	return s, nil
}
