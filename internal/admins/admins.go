// Package admins manages platform console operator accounts. Operators
// are user rows with no tenant scoping.
package admins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peopleflow/peopleflow/internal/auth"
	"github.com/peopleflow/peopleflow/internal/platform/pgerr"
	"github.com/peopleflow/peopleflow/internal/platform/validate"
	"github.com/peopleflow/peopleflow/internal/rbac"
	"github.com/peopleflow/peopleflow/internal/shared"
)

var (
	errDuplicateEmail = errors.New("admin email already registered")
	// ErrLastAdmin blocks deactivating the final active operator.
	ErrLastAdmin = errors.New("cannot deactivate the last active admin")
)

// Admin is one console operator.
type Admin struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInput is the payload for provisioning an operator.
type CreateInput struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=12"`
}

// Repository persists operator accounts.
type Repository interface {
	List(ctx context.Context) ([]Admin, error)
	Get(ctx context.Context, id int64) (Admin, error)
	Create(ctx context.Context, a Admin, passwordHash string) (Admin, error)
	SetActive(ctx context.Context, id int64, active bool) error
	ActiveCount(ctx context.Context) (int, error)
}

// PGRepository reads operator rows from the shared users table, filtered
// to the platform scope (tenant_id = 0).
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) List(ctx context.Context) ([]Admin, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, full_name, is_active, created_at
		FROM users WHERE tenant_id = 0 ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	list := make([]Admin, 0)
	for rows.Next() {
		var a Admin
		if err := rows.Scan(&a.ID, &a.Email, &a.FullName, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Admin, error) {
	var a Admin
	err := r.pool.QueryRow(ctx, `SELECT id, email, full_name, is_active, created_at
		FROM users WHERE tenant_id = 0 AND id = $1`, id,
	).Scan(&a.ID, &a.Email, &a.FullName, &a.IsActive, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Admin{}, shared.ErrNotFound
	}
	return a, err
}

func (r *PGRepository) Create(ctx context.Context, a Admin, passwordHash string) (Admin, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO users (tenant_id, email, full_name, password_hash, is_active)
		VALUES (0, $1, $2, $3, true)
		RETURNING id, created_at`,
		a.Email, a.FullName, passwordHash,
	).Scan(&a.ID, &a.CreatedAt)
	if pgerr.IsUniqueViolation(err) {
		return Admin{}, errDuplicateEmail
	}
	if err != nil {
		return Admin{}, fmt.Errorf("insert admin: %w", err)
	}
	a.IsActive = true
	return a, nil
}

func (r *PGRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE users SET is_active = $1, updated_at = now() WHERE tenant_id = 0 AND id = $2",
		active, id)
	if err != nil {
		return fmt.Errorf("set admin active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) ActiveCount(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT count(*) FROM users WHERE tenant_id = 0 AND is_active").Scan(&count)
	return count, err
}

// Service implements operator account management.
type Service struct {
	logger *slog.Logger
	repo   Repository
	rbac   *rbac.Service
	audit  *shared.AuditLogger
}

func NewService(logger *slog.Logger, repo Repository, rbacSvc *rbac.Service, audit *shared.AuditLogger) *Service {
	return &Service{logger: logger, repo: repo, rbac: rbacSvc, audit: audit}
}

func (s *Service) List(ctx context.Context) ([]Admin, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Admin, error) {
	return s.repo.Get(ctx, id)
}

// Create provisions an operator and grants the console role.
func (s *Service) Create(ctx context.Context, actorID int64, input CreateInput) (Admin, error) {
	if err := validate.Struct(input); err != nil {
		return Admin{}, err
	}
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return Admin{}, err
	}
	created, err := s.repo.Create(ctx, Admin{
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		FullName: strings.TrimSpace(input.FullName),
	}, hash)
	if err != nil {
		return Admin{}, err
	}
	if s.rbac != nil {
		if err := s.rbac.AssignRoleByName(ctx, created.ID, shared.RolePlatformAdmin); err != nil {
			s.logger.Error("grant console role", "admin_id", created.ID, "error", err)
		}
	}
	s.record(ctx, actorID, "admin.create", created.ID)
	return created, nil
}

// Deactivate disables an operator, refusing to lock everyone out.
func (s *Service) Deactivate(ctx context.Context, actorID, id int64) error {
	active, err := s.repo.ActiveCount(ctx)
	if err != nil {
		return err
	}
	if active <= 1 {
		return ErrLastAdmin
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.record(ctx, actorID, "admin.deactivate", id)
	return nil
}

// Reactivate re-enables a disabled operator.
func (s *Service) Reactivate(ctx context.Context, actorID, id int64) error {
	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return err
	}
	s.record(ctx, actorID, "admin.reactivate", id)
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, id int64) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "admin",
		EntityID: fmt.Sprintf("%d", id),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
