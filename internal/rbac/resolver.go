package rbac

import "github.com/peopleflow/peopleflow/internal/shared"

// Resolver answers authorization questions over an immutable snapshot of
// the session user's roles. It never touches the network and never fails;
// absence of data degrades to false.
type Resolver struct {
	roles         []shared.RoleSnapshot
	authenticated bool
}

// NewResolver builds a resolver from a session. A nil session yields a
// resolver that denies everything.
func NewResolver(sess *shared.Session) Resolver {
	if sess == nil {
		return Resolver{}
	}
	return Resolver{roles: sess.Roles, authenticated: true}
}

// ResolverForRoles builds a resolver directly from role snapshots.
func ResolverForRoles(roles []shared.RoleSnapshot) Resolver {
	return Resolver{roles: roles, authenticated: true}
}

// HasRole reports whether the user holds a role with exactly this name.
func (r Resolver) HasRole(name string) bool {
	if !r.authenticated {
		return false
	}
	for _, role := range r.roles {
		if role.Name == name {
			return true
		}
	}
	return false
}

// HasPermission reports whether the user may perform the named action.
// TENANT_ADMIN bypasses explicit permission lists entirely; the override
// is the point, not an optimisation.
func (r Resolver) HasPermission(name string) bool {
	if !r.authenticated {
		return false
	}
	if r.HasRole(shared.RoleTenantAdmin) {
		return true
	}
	for _, role := range r.roles {
		for _, perm := range role.Permissions {
			if perm == name {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission reports whether at least one of the names is granted.
func (r Resolver) HasAnyPermission(names ...string) bool {
	for _, n := range names {
		if r.HasPermission(n) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every name is granted.
func (r Resolver) HasAllPermissions(names ...string) bool {
	for _, n := range names {
		if !r.HasPermission(n) {
			return false
		}
	}
	return true
}

// Capabilities are the derived flags the SPAs consume to show or hide
// actions. The OR-groupings below are the authorization policy; changing
// a grouping changes behaviour for every client.
type Capabilities struct {
	CanViewJobs          bool `json:"can_view_jobs"`
	CanManageJobs        bool `json:"can_manage_jobs"`
	CanViewCandidates    bool `json:"can_view_candidates"`
	CanManageCandidates  bool `json:"can_manage_candidates"`
	CanViewSubmissions   bool `json:"can_view_submissions"`
	CanManageSubmissions bool `json:"can_manage_submissions"`
	CanManageUsers       bool `json:"can_manage_users"`
	CanViewTeam          bool `json:"can_view_team"`
	CanViewReports       bool `json:"can_view_reports"`
	CanManageTenants     bool `json:"can_manage_tenants"`
	CanManagePlans       bool `json:"can_manage_plans"`
	CanManageAdmins      bool `json:"can_manage_admins"`
}

// Capabilities derives every flag from the resolver.
func (r Resolver) Capabilities() Capabilities {
	return Capabilities{
		CanViewJobs:          r.HasPermission(shared.PermJobsView),
		CanManageJobs:        r.HasAnyPermission(shared.PermJobsCreate, shared.PermJobsEdit, shared.PermJobsDelete),
		CanViewCandidates:    r.HasPermission(shared.PermCandidatesView),
		CanManageCandidates:  r.HasAnyPermission(shared.PermCandidatesCreate, shared.PermCandidatesEdit, shared.PermCandidatesDelete),
		CanViewSubmissions:   r.HasPermission(shared.PermSubmissionsView),
		CanManageSubmissions: r.HasAnyPermission(shared.PermSubmissionsCreate, shared.PermSubmissionsReview),
		CanManageUsers:       r.HasAnyPermission(shared.PermUsersCreate, shared.PermUsersEdit, shared.PermUsersDelete),
		CanViewTeam:          r.HasPermission(shared.PermTeamView),
		CanViewReports:       r.HasPermission(shared.PermReportsView),
		CanManageTenants:     r.HasAnyPermission(shared.PermTenantsCreate, shared.PermTenantsEdit, shared.PermTenantsSuspend),
		CanManagePlans:       r.HasPermission(shared.PermPlansManage),
		CanManageAdmins:      r.HasPermission(shared.PermAdminsManage),
	}
}

// IsRecruiter reports whether the user is a plain recruiter.
func (r Resolver) IsRecruiter() bool {
	return r.HasRole(shared.RoleRecruiter)
}

// HasTeamView reports whether the user's roles permit browsing
// subordinates at all.
func (r Resolver) HasTeamView() bool {
	return r.HasRole(shared.RoleManager) || r.HasRole(shared.RoleTeamLead) || r.HasRole(shared.RoleTenantAdmin)
}
