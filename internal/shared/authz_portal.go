package shared

// Portal permissions. These names are the contract between role seeds,
// request guards, and the capability flags the SPA consumes; renaming one
// is a breaking change.
const (
	PermJobsView   = "jobs.view"
	PermJobsCreate = "jobs.create"
	PermJobsEdit   = "jobs.edit"
	PermJobsDelete = "jobs.delete"

	PermCandidatesView   = "candidates.view"
	PermCandidatesCreate = "candidates.create"
	PermCandidatesEdit   = "candidates.edit"
	PermCandidatesDelete = "candidates.delete"

	PermSubmissionsView   = "submissions.view"
	PermSubmissionsCreate = "submissions.create"
	PermSubmissionsReview = "submissions.review"

	PermUsersView   = "users.view"
	PermUsersCreate = "users.create"
	PermUsersEdit   = "users.edit"
	PermUsersDelete = "users.delete"

	PermTeamView = "team.view"

	PermReportsView = "reports.view"
)

// PortalScopes lists all portal permissions.
func PortalScopes() []string {
	return []string{
		PermJobsView,
		PermJobsCreate,
		PermJobsEdit,
		PermJobsDelete,
		PermCandidatesView,
		PermCandidatesCreate,
		PermCandidatesEdit,
		PermCandidatesDelete,
		PermSubmissionsView,
		PermSubmissionsCreate,
		PermSubmissionsReview,
		PermUsersView,
		PermUsersCreate,
		PermUsersEdit,
		PermUsersDelete,
		PermTeamView,
		PermReportsView,
	}
}
