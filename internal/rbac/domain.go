// Package rbac implements role and permission resolution for both the
// portal and the platform console.
package rbac

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/peopleflow/peopleflow/internal/shared"
)

// PermissionName is a validated permission identifier. Decoding an
// unregistered name fails instead of silently never matching a check.
type PermissionName string

var registered = func() map[string]struct{} {
	names := shared.AllScopes()
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}()

// ParsePermission validates a raw permission string.
func ParsePermission(raw string) (PermissionName, error) {
	if _, ok := registered[raw]; !ok {
		return "", fmt.Errorf("rbac: unknown permission %q", raw)
	}
	return PermissionName(raw), nil
}

// UnmarshalJSON validates the name at the decode boundary.
func (p *PermissionName) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePermission(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p PermissionName) String() string { return string(p) }

// Permission represents an atomic capability.
type Permission struct {
	ID          int64          `json:"id"`
	Name        PermissionName `json:"name"`
	DisplayName string         `json:"display_name"`
	Category    string         `json:"category"`
}

// Role represents a named permission bundle assigned to users.
type Role struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	DisplayName string       `json:"display_name"`
	Permissions []Permission `json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Snapshot converts a role to the compact form stored in sessions.
func (r Role) Snapshot() shared.RoleSnapshot {
	perms := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, string(p.Name))
	}
	return shared.RoleSnapshot{Name: r.Name, DisplayName: r.DisplayName, Permissions: perms}
}
