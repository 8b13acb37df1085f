package rbac

import (
	"context"
	"errors"
	"strings"

	"github.com/peopleflow/peopleflow/internal/shared"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("rbac: not found")

// Service orchestrates role and permission management.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListRoles returns all roles with their permissions, ordered by name.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole fetches a role by ID.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// CreateRole inserts a new role.
func (s *Service) CreateRole(ctx context.Context, name, displayName string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("rbac: role name required")
	}
	return s.repo.CreateRole(ctx, name, strings.TrimSpace(displayName))
}

// UpdateRole updates an existing role.
func (s *Service) UpdateRole(ctx context.Context, id int64, name, displayName string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, errors.New("rbac: role name required")
	}
	return s.repo.UpdateRole(ctx, id, name, strings.TrimSpace(displayName))
}

// DeleteRole removes a role by ID.
func (s *Service) DeleteRole(ctx context.Context, id int64) error {
	return s.repo.DeleteRole(ctx, id)
}

// ListPermissions returns the full permission catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// EnsurePermission upserts a permission, validating the name against the
// registered scopes.
func (s *Service) EnsurePermission(ctx context.Context, rawName, displayName, category string) (Permission, error) {
	name, err := ParsePermission(strings.TrimSpace(rawName))
	if err != nil {
		return Permission{}, err
	}
	return s.repo.EnsurePermission(ctx, name, strings.TrimSpace(displayName), strings.TrimSpace(category))
}

// SetRolePermissions replaces the permission set for a role.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return err
	}
	return s.repo.ReplaceRolePermissions(ctx, roleID, permissionIDs)
}

// AssignRole assigns a role to the given user.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64) error {
	if _, err := s.repo.GetRole(ctx, roleID); err != nil {
		return err
	}
	return s.repo.AssignRole(ctx, userID, roleID)
}

// AssignRoleByName grants a well-known role without requiring the caller
// to know its row id.
func (s *Service) AssignRoleByName(ctx context.Context, userID int64, name string) error {
	role, err := s.repo.FindRoleByName(ctx, name)
	if err != nil {
		return err
	}
	return s.repo.AssignRole(ctx, userID, role.ID)
}

// RemoveRole removes a role from a user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID int64) error {
	return s.repo.RemoveRole(ctx, userID, roleID)
}

// UserRoles returns the roles held by a user, permissions included.
func (s *Service) UserRoles(ctx context.Context, userID int64) ([]Role, error) {
	return s.repo.UserRoles(ctx, userID)
}

// UserResolver loads a user's roles and wraps them in a Resolver. Used on
// login and wherever session snapshots must be rebuilt.
func (s *Service) UserResolver(ctx context.Context, userID int64) (Resolver, error) {
	roles, err := s.repo.UserRoles(ctx, userID)
	if err != nil {
		return Resolver{}, err
	}
	snapshots := make([]shared.RoleSnapshot, 0, len(roles))
	for _, role := range roles {
		snapshots = append(snapshots, role.Snapshot())
	}
	return ResolverForRoles(snapshots), nil
}

// EffectivePermissions returns deduplicated permission names for a user.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	roles, err := s.repo.UserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var perms []string
	for _, role := range roles {
		for _, p := range role.Permissions {
			name := string(p.Name)
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			perms = append(perms, name)
		}
	}
	return perms, nil
}
