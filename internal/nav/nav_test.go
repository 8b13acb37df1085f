package nav

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peopleflow/peopleflow/internal/shared"
)

func entryIDs(entries []Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestFilterPreservesOrder(t *testing.T) {
	entries := []Entry{
		{ID: "a", Roles: []string{shared.RoleTenantAdmin}},
		{ID: "b", Roles: []string{shared.RoleRecruiter, shared.RoleManager}},
		{ID: "c", Roles: []string{shared.RoleRecruiter}},
	}

	got := Filter(entries, []string{shared.RoleRecruiter})
	require.Equal(t, []string{"b", "c"}, entryIDs(got))
}

func TestFilterEmptyRolesYieldsEmpty(t *testing.T) {
	got := Filter(Default(), nil)
	require.Empty(t, got)

	got = Filter(Default(), []string{})
	require.Empty(t, got)
}

func TestFilterNoMatchingEntries(t *testing.T) {
	got := Filter(Default(), []string{"SOMETHING_ELSE"})
	require.Empty(t, got)
}

func TestFilterIdempotent(t *testing.T) {
	roles := []string{shared.RoleManager, shared.RoleRecruiter}
	once := Filter(Default(), roles)
	twice := Filter(once, roles)
	require.Equal(t, once, twice)
}

func TestFilterIgnoresPermissions(t *testing.T) {
	// A tenant admin sees admin-only entries purely by role name; the
	// filter has no permission knowledge to consult.
	got := Filter(Default(), []string{shared.RoleTenantAdmin})
	require.Contains(t, entryIDs(got), "users")
	require.Contains(t, entryIDs(got), "settings")

	got = Filter(Default(), []string{shared.RoleRecruiter})
	require.NotContains(t, entryIDs(got), "users")
	require.NotContains(t, entryIDs(got), "team")
}

func TestScenarioC(t *testing.T) {
	entries := []Entry{
		{ID: "a", Roles: []string{shared.RoleTenantAdmin}},
		{ID: "b", Roles: []string{shared.RoleRecruiter, shared.RoleManager}},
	}
	got := Filter(entries, []string{shared.RoleRecruiter})
	require.Len(t, got, 1)
	require.Equal(t, "b", got[0].ID)
}

func TestRegistriesDeclareRoles(t *testing.T) {
	for _, e := range append(Default(), Platform()...) {
		require.NotEmpty(t, e.Roles, "entry %s must declare allowed roles", e.ID)
	}
}
