// Package users manages tenant member accounts and their role grants.
package users

import (
	"time"

	"github.com/peopleflow/peopleflow/internal/rbac"
)

// User is one member of a tenant's workspace.
type User struct {
	ID        int64       `json:"id"`
	TenantID  int64       `json:"tenant_id"`
	Email     string      `json:"email"`
	FullName  string      `json:"full_name"`
	IsActive  bool        `json:"is_active"`
	ManagerID *int64      `json:"manager_id,omitempty"`
	Roles     []rbac.Role `json:"roles,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CreateInput is the payload for inviting a member.
type CreateInput struct {
	Email    string  `json:"email" validate:"required,email"`
	FullName string  `json:"full_name" validate:"required,max=200"`
	Password string  `json:"password" validate:"required,min=12"`
	RoleIDs  []int64 `json:"role_ids" validate:"omitempty,dive,gt=0"`
}

// UpdateInput is the payload for editing a member.
type UpdateInput struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	IsActive bool   `json:"is_active"`
}

// ListFilter narrows member listings.
type ListFilter struct {
	Search string
	Active *bool
	Limit  int
	Offset int
}
