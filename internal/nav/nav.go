// Package nav declares the portal navigation registry and the role-based
// filter applied to it. Navigation is a coarse gate over role names only;
// pages still enforce permissions behind each entry.
package nav

import "github.com/peopleflow/peopleflow/internal/shared"

// Entry is a static navigation item compiled into the app.
type Entry struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Icon  string   `json:"icon"`
	Href  string   `json:"href"`
	Roles []string `json:"-"`
	Badge string   `json:"badge,omitempty"`
}

var portalRoles = []string{
	shared.RoleTenantAdmin,
	shared.RoleManager,
	shared.RoleTeamLead,
	shared.RoleRecruiter,
	shared.RoleHiringManager,
}

var teamRoles = []string{
	shared.RoleTenantAdmin,
	shared.RoleManager,
	shared.RoleTeamLead,
}

// Default returns the portal navigation in declaration order.
func Default() []Entry {
	return []Entry{
		{ID: "dashboard", Label: "Dashboard", Icon: "home", Href: "/", Roles: portalRoles},
		{ID: "jobs", Label: "Jobs", Icon: "briefcase", Href: "/jobs", Roles: portalRoles},
		{ID: "candidates", Label: "Candidates", Icon: "users", Href: "/candidates", Roles: portalRoles},
		{ID: "submissions", Label: "Submissions", Icon: "send", Href: "/submissions", Roles: []string{shared.RoleTenantAdmin, shared.RoleManager, shared.RoleTeamLead, shared.RoleRecruiter}},
		{ID: "team", Label: "My Team", Icon: "sitemap", Href: "/team", Roles: teamRoles},
		{ID: "reports", Label: "Reports", Icon: "chart", Href: "/reports", Roles: []string{shared.RoleTenantAdmin, shared.RoleManager}},
		{ID: "users", Label: "Users", Icon: "shield", Href: "/settings/users", Roles: []string{shared.RoleTenantAdmin}},
		{ID: "settings", Label: "Settings", Icon: "cog", Href: "/settings", Roles: []string{shared.RoleTenantAdmin}},
	}
}

// Platform returns the platform-console navigation.
func Platform() []Entry {
	return []Entry{
		{ID: "tenants", Label: "Tenants", Icon: "building", Href: "/tenants", Roles: []string{shared.RolePlatformAdmin}},
		{ID: "plans", Label: "Plans", Icon: "layers", Href: "/plans", Roles: []string{shared.RolePlatformAdmin}},
		{ID: "admins", Label: "Administrators", Icon: "shield", Href: "/admins", Roles: []string{shared.RolePlatformAdmin}},
	}
}

// Filter selects, preserving declaration order, the entries whose role set
// intersects roleNames. Empty roleNames yields an empty list.
func Filter(entries []Entry, roleNames []string) []Entry {
	if len(roleNames) == 0 {
		return []Entry{}
	}
	held := make(map[string]struct{}, len(roleNames))
	for _, name := range roleNames {
		held[name] = struct{}{}
	}
	visible := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		for _, role := range entry.Roles {
			if _, ok := held[role]; ok {
				visible = append(visible, entry)
				break
			}
		}
	}
	return visible
}
