package team

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/peopleflow/peopleflow/internal/platform/cache"
	"github.com/peopleflow/peopleflow/internal/shared"
)

type memoryTeamRepo struct {
	reports     map[int64][]MemberWithCounts
	candidates  map[int64][]CandidateInfo
	managers    map[int64]*int64
	users       map[int64]bool
	reportCalls int
}

func newMemoryTeamRepo() *memoryTeamRepo {
	return &memoryTeamRepo{
		reports:    make(map[int64][]MemberWithCounts),
		candidates: make(map[int64][]CandidateInfo),
		managers:   make(map[int64]*int64),
		users:      make(map[int64]bool),
	}
}

func (r *memoryTeamRepo) DirectReports(ctx context.Context, tenantID, managerID int64) ([]MemberWithCounts, error) {
	r.reportCalls++
	return r.reports[managerID], nil
}

func (r *memoryTeamRepo) MemberCandidates(ctx context.Context, tenantID, memberID int64) ([]CandidateInfo, error) {
	return r.candidates[memberID], nil
}

func (r *memoryTeamRepo) MemberExists(ctx context.Context, tenantID, memberID int64) (bool, error) {
	return r.users[memberID], nil
}

func (r *memoryTeamRepo) IsInSubtree(ctx context.Context, rootID, candidateID int64) (bool, error) {
	// Walk down from rootID through the recorded manager links.
	if rootID == candidateID {
		return true, nil
	}
	for id, mgr := range r.managers {
		if mgr != nil && *mgr == rootID {
			found, err := r.IsInSubtree(ctx, id, candidateID)
			if err != nil || found {
				return found, err
			}
		}
	}
	return false, nil
}

func (r *memoryTeamRepo) SetManager(ctx context.Context, tenantID, memberID int64, managerID *int64) error {
	if !r.users[memberID] {
		return shared.ErrNotFound
	}
	r.managers[memberID] = managerID
	return nil
}

func newTestService(t *testing.T, repo Repository) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, repo, cache.NewQueryCache(client, time.Minute), client, nil), mr
}

func TestTeamMembersCachedUntilMutation(t *testing.T) {
	repo := newMemoryTeamRepo()
	repo.users[1] = true
	repo.users[2] = true
	repo.users[3] = true
	repo.reports[1] = []MemberWithCounts{{ID: 2, FullName: "Lin"}}

	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	members, err := svc.TeamMembers(ctx, 10, 1)
	require.NoError(t, err)
	require.Len(t, members, 1)

	_, err = svc.TeamMembers(ctx, 10, 1)
	require.NoError(t, err)
	require.Equal(t, 1, repo.reportCalls, "second read should hit the cache")

	_, err = svc.AssignManager(ctx, 10, 1, 3, 2)
	require.NoError(t, err)

	_, err = svc.TeamMembers(ctx, 10, 1)
	require.NoError(t, err)
	require.Equal(t, 2, repo.reportCalls, "mutation must invalidate the team namespace")
}

func TestAssignManagerRefusesSelf(t *testing.T) {
	repo := newMemoryTeamRepo()
	repo.users[2] = true
	svc, _ := newTestService(t, repo)

	_, err := svc.AssignManager(context.Background(), 10, 1, 2, 2)
	require.ErrorIs(t, err, ErrSelfManager)
}

func TestAssignManagerRefusesCycle(t *testing.T) {
	repo := newMemoryTeamRepo()
	for _, id := range []int64{1, 2, 3} {
		repo.users[id] = true
	}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	// 2 reports to 1, 3 reports to 2. Making 1 report to 3 closes a loop.
	_, err := svc.AssignManager(ctx, 10, 99, 2, 1)
	require.NoError(t, err)
	_, err = svc.AssignManager(ctx, 10, 99, 3, 2)
	require.NoError(t, err)

	_, err = svc.AssignManager(ctx, 10, 99, 1, 3)
	require.ErrorIs(t, err, ErrCycle)
}

func TestAssignManagerUnknownMember(t *testing.T) {
	repo := newMemoryTeamRepo()
	repo.users[1] = true
	svc, _ := newTestService(t, repo)

	_, err := svc.AssignManager(context.Background(), 10, 99, 404, 1)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestHierarchyEditLockHeld(t *testing.T) {
	repo := newMemoryTeamRepo()
	repo.users[1] = true
	repo.users[2] = true
	svc, mr := newTestService(t, repo)

	require.NoError(t, mr.Set(shared.TeamLockKey(10), "1"))

	_, err := svc.AssignManager(context.Background(), 10, 99, 2, 1)
	require.ErrorIs(t, err, ErrBusy)
}

func TestMemberCandidatesUnknownMember(t *testing.T) {
	repo := newMemoryTeamRepo()
	svc, _ := newTestService(t, repo)

	_, err := svc.MemberCandidates(context.Background(), 10, 5)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEmptyListsAreListsNotNull(t *testing.T) {
	repo := newMemoryTeamRepo()
	repo.users[5] = true
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	members, err := svc.TeamMembers(ctx, 10, 5)
	require.NoError(t, err)
	require.NotNil(t, members)
	require.Empty(t, members)

	candidates, err := svc.MemberCandidates(ctx, 10, 5)
	require.NoError(t, err)
	require.NotNil(t, candidates)
	require.Empty(t, candidates)
}
