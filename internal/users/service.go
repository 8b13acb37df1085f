package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/peopleflow/peopleflow/internal/auth"
	"github.com/peopleflow/peopleflow/internal/platform/validate"
	"github.com/peopleflow/peopleflow/internal/rbac"
	"github.com/peopleflow/peopleflow/internal/shared"
)

// Service implements tenant member management.
type Service struct {
	logger *slog.Logger
	repo   Repository
	rbac   *rbac.Service
	audit  *shared.AuditLogger
}

func NewService(logger *slog.Logger, repo Repository, rbacSvc *rbac.Service, audit *shared.AuditLogger) *Service {
	return &Service{logger: logger, repo: repo, rbac: rbacSvc, audit: audit}
}

func (s *Service) List(ctx context.Context, tenantID int64, filter ListFilter) ([]User, int, error) {
	return s.repo.List(ctx, tenantID, filter)
}

// Get returns a member with roles attached.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (User, error) {
	u, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return User{}, err
	}
	if s.rbac != nil {
		roles, err := s.rbac.UserRoles(ctx, u.ID)
		if err != nil {
			return User{}, err
		}
		u.Roles = roles
	}
	return u, nil
}

// Create invites a member and grants the requested roles.
func (s *Service) Create(ctx context.Context, tenantID, actorID int64, input CreateInput) (User, error) {
	if err := validate.Struct(input); err != nil {
		return User{}, err
	}
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return User{}, err
	}
	created, err := s.repo.Create(ctx, User{
		TenantID: tenantID,
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		FullName: strings.TrimSpace(input.FullName),
	}, hash)
	if err != nil {
		return User{}, err
	}
	if s.rbac != nil {
		for _, roleID := range input.RoleIDs {
			if err := s.rbac.AssignRole(ctx, created.ID, roleID); err != nil {
				return User{}, fmt.Errorf("grant role %d: %w", roleID, err)
			}
		}
	}
	s.record(ctx, tenantID, actorID, "user.create", created.ID)
	return s.Get(ctx, tenantID, created.ID)
}

func (s *Service) Update(ctx context.Context, tenantID, actorID, id int64, input UpdateInput) (User, error) {
	if err := validate.Struct(input); err != nil {
		return User{}, err
	}
	current, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return User{}, err
	}
	current.FullName = strings.TrimSpace(input.FullName)
	current.IsActive = input.IsActive

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return User{}, err
	}
	s.record(ctx, tenantID, actorID, "user.update", id)
	return updated, nil
}

// SetRoles replaces a member's role grants.
func (s *Service) SetRoles(ctx context.Context, tenantID, actorID, id int64, roleIDs []int64) (User, error) {
	if _, err := s.repo.Get(ctx, tenantID, id); err != nil {
		return User{}, err
	}
	current, err := s.rbac.UserRoles(ctx, id)
	if err != nil {
		return User{}, err
	}
	keep := make(map[int64]struct{}, len(roleIDs))
	for _, roleID := range roleIDs {
		keep[roleID] = struct{}{}
		if err := s.rbac.AssignRole(ctx, id, roleID); err != nil {
			return User{}, fmt.Errorf("grant role %d: %w", roleID, err)
		}
	}
	for _, role := range current {
		if _, ok := keep[role.ID]; ok {
			continue
		}
		if err := s.rbac.RemoveRole(ctx, id, role.ID); err != nil {
			return User{}, fmt.Errorf("revoke role %d: %w", role.ID, err)
		}
	}
	s.record(ctx, tenantID, actorID, "user.roles", id)
	return s.Get(ctx, tenantID, id)
}

func (s *Service) record(ctx context.Context, tenantID, actorID int64, action string, id int64) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditLog{
		ActorID:  actorID,
		TenantID: tenantID,
		Action:   action,
		Entity:   "user",
		EntityID: fmt.Sprintf("%d", id),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
