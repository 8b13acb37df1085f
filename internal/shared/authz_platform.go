package shared

// Platform-console permissions (tenant, plan, and admin management).
const (
	PermTenantsView    = "tenants.view"
	PermTenantsCreate  = "tenants.create"
	PermTenantsEdit    = "tenants.edit"
	PermTenantsSuspend = "tenants.suspend"

	PermPlansView   = "plans.view"
	PermPlansManage = "plans.manage"

	PermAdminsView   = "admins.view"
	PermAdminsManage = "admins.manage"
)

// Well-known role names. RoleTenantAdmin carries the unconditional
// permission override; the others are plain permission bundles.
const (
	RoleTenantAdmin   = "TENANT_ADMIN"
	RoleManager       = "MANAGER"
	RoleTeamLead      = "TEAM_LEAD"
	RoleRecruiter     = "RECRUITER"
	RoleHiringManager = "HIRING_MANAGER"
	RolePlatformAdmin = "PLATFORM_ADMIN"
)

// PlatformScopes lists all platform-console permissions.
func PlatformScopes() []string {
	return []string{
		PermTenantsView,
		PermTenantsCreate,
		PermTenantsEdit,
		PermTenantsSuspend,
		PermPlansView,
		PermPlansManage,
		PermAdminsView,
		PermAdminsManage,
	}
}

// AllScopes returns every registered permission name across both surfaces.
func AllScopes() []string {
	return append(PortalScopes(), PlatformScopes()...)
}
