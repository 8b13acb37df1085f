// Package plans manages the subscription tiers tenants are billed on.
package plans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peopleflow/peopleflow/internal/platform/pgerr"
	"github.com/peopleflow/peopleflow/internal/platform/validate"
	"github.com/peopleflow/peopleflow/internal/shared"
)

var (
	errDuplicateName = errors.New("plan name already exists")
	// ErrInUse blocks deleting a plan tenants are still subscribed to.
	ErrInUse = errors.New("plan has active tenants")
)

// Plan is one subscription tier.
type Plan struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SeatLimit    int       `json:"seat_limit"`
	OpeningLimit int       `json:"opening_limit"`
	PriceCents   int64     `json:"price_cents"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input is the payload for creating or editing a plan.
type Input struct {
	Name         string `json:"name" validate:"required,max=120"`
	SeatLimit    int    `json:"seat_limit" validate:"required,gt=0"`
	OpeningLimit int    `json:"opening_limit" validate:"required,gt=0"`
	PriceCents   int64  `json:"price_cents" validate:"gte=0"`
}

// Repository persists plans.
type Repository interface {
	List(ctx context.Context) ([]Plan, error)
	Get(ctx context.Context, id int64) (Plan, error)
	Create(ctx context.Context, p Plan) (Plan, error)
	Update(ctx context.Context, p Plan) (Plan, error)
	Delete(ctx context.Context, id int64) error
	TenantCount(ctx context.Context, id int64) (int, error)
}

// PGRepository is the pgx-backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const planColumns = "id, name, seat_limit, opening_limit, price_cents, created_at, updated_at"

func (r *PGRepository) List(ctx context.Context) ([]Plan, error) {
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM plans ORDER BY price_cents", planColumns))
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	list := make([]Plan, 0)
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.SeatLimit, &p.OpeningLimit,
			&p.PriceCents, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Plan, error) {
	var p Plan
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM plans WHERE id = $1", planColumns), id,
	).Scan(&p.ID, &p.Name, &p.SeatLimit, &p.OpeningLimit, &p.PriceCents, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, shared.ErrNotFound
	}
	return p, err
}

func (r *PGRepository) Create(ctx context.Context, p Plan) (Plan, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO plans (name, seat_limit, opening_limit, price_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		p.Name, p.SeatLimit, p.OpeningLimit, p.PriceCents,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if pgerr.IsUniqueViolation(err) {
		return Plan{}, errDuplicateName
	}
	if err != nil {
		return Plan{}, fmt.Errorf("insert plan: %w", err)
	}
	return p, nil
}

func (r *PGRepository) Update(ctx context.Context, p Plan) (Plan, error) {
	err := r.pool.QueryRow(ctx, `UPDATE plans SET
		name = $1, seat_limit = $2, opening_limit = $3, price_cents = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at`,
		p.Name, p.SeatLimit, p.OpeningLimit, p.PriceCents, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, shared.ErrNotFound
	}
	if pgerr.IsUniqueViolation(err) {
		return Plan{}, errDuplicateName
	}
	if err != nil {
		return Plan{}, fmt.Errorf("update plan: %w", err)
	}
	return p, nil
}

func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM plans WHERE id = $1", id)
	if pgerr.IsForeignKeyViolation(err) {
		return ErrInUse
	}
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) TenantCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT count(*) FROM tenants WHERE plan_id = $1", id).Scan(&count)
	return count, err
}

// Service implements plan management.
type Service struct {
	logger *slog.Logger
	repo   Repository
}

func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Plan, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Plan, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input Input) (Plan, error) {
	if err := validate.Struct(input); err != nil {
		return Plan{}, err
	}
	return s.repo.Create(ctx, Plan{
		Name:         strings.TrimSpace(input.Name),
		SeatLimit:    input.SeatLimit,
		OpeningLimit: input.OpeningLimit,
		PriceCents:   input.PriceCents,
	})
}

func (s *Service) Update(ctx context.Context, id int64, input Input) (Plan, error) {
	if err := validate.Struct(input); err != nil {
		return Plan{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	current.Name = strings.TrimSpace(input.Name)
	current.SeatLimit = input.SeatLimit
	current.OpeningLimit = input.OpeningLimit
	current.PriceCents = input.PriceCents
	return s.repo.Update(ctx, current)
}

// Delete removes a plan with no subscribers.
func (s *Service) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.TenantCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrInUse
	}
	return s.repo.Delete(ctx, id)
}
