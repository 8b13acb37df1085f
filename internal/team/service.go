package team

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peopleflow/peopleflow/internal/platform/cache"
	"github.com/peopleflow/peopleflow/internal/shared"
)

// Mutation names registered in the cache invalidation table.
const (
	MutationAssignManager = "team.assign_manager"
	MutationRemoveManager = "team.remove_manager"
)

var (
	// ErrCycle indicates an assignment that would make a manager report
	// to someone inside their own subtree.
	ErrCycle = errors.New("team: assignment would create a reporting cycle")
	// ErrSelfManager indicates a member assigned as their own manager.
	ErrSelfManager = errors.New("team: member cannot manage themselves")
	// ErrBusy indicates a concurrent hierarchy edit holds the tenant lock.
	ErrBusy = errors.New("team: hierarchy edit in progress, retry")
)

// Service reads and mutates the team hierarchy. Reads go through the
// query cache; mutations invalidate the team namespace.
type Service struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.QueryCache
	locks  *redis.Client
	audit  *shared.AuditLogger
}

// NewService constructs a Service. cache, locks, and audit may be nil in
// tests; the service degrades to direct repository access.
func NewService(logger *slog.Logger, repo Repository, qc *cache.QueryCache, locks *redis.Client, audit *shared.AuditLogger) *Service {
	return &Service{logger: logger, repo: repo, cache: qc, locks: locks, audit: audit}
}

// TeamMembers returns direct reports of the given subtree root, with
// counts. rootID is the context id of the drill-down.
func (s *Service) TeamMembers(ctx context.Context, tenantID, rootID int64) ([]MemberWithCounts, error) {
	key := cache.Key("team", "members", strconv.FormatInt(tenantID, 10), strconv.FormatInt(rootID, 10))
	var members []MemberWithCounts
	err := s.cache.FetchJSON(ctx, key, &members, func(ctx context.Context) (interface{}, error) {
		return s.repo.DirectReports(ctx, tenantID, rootID)
	})
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []MemberWithCounts{}
	}
	return members, nil
}

// MemberCandidates returns the candidates assigned to a team member.
func (s *Service) MemberCandidates(ctx context.Context, tenantID, memberID int64) ([]CandidateInfo, error) {
	ok, err := s.repo.MemberExists(ctx, tenantID, memberID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrNotFound
	}
	key := cache.Key("team", "member-candidates", strconv.FormatInt(tenantID, 10), strconv.FormatInt(memberID, 10))
	var candidates []CandidateInfo
	err = s.cache.FetchJSON(ctx, key, &candidates, func(ctx context.Context) (interface{}, error) {
		return s.repo.MemberCandidates(ctx, tenantID, memberID)
	})
	if err != nil {
		return nil, err
	}
	if candidates == nil {
		candidates = []CandidateInfo{}
	}
	return candidates, nil
}

// MyCandidates returns the viewer's own assigned candidates.
func (s *Service) MyCandidates(ctx context.Context, tenantID, userID int64) ([]CandidateInfo, error) {
	key := cache.Key("candidates", "my", strconv.FormatInt(tenantID, 10), strconv.FormatInt(userID, 10))
	var candidates []CandidateInfo
	err := s.cache.FetchJSON(ctx, key, &candidates, func(ctx context.Context) (interface{}, error) {
		return s.repo.MemberCandidates(ctx, tenantID, userID)
	})
	if err != nil {
		return nil, err
	}
	if candidates == nil {
		candidates = []CandidateInfo{}
	}
	return candidates, nil
}

// AssignManager sets a member's manager, refusing self-assignment and
// cycles. Hierarchy edits are serialised per tenant with a redis lock.
func (s *Service) AssignManager(ctx context.Context, tenantID, actorID, memberID, managerID int64) (Assignment, error) {
	if memberID == managerID {
		return Assignment{}, ErrSelfManager
	}
	unlock, err := s.acquireLock(ctx, tenantID)
	if err != nil {
		return Assignment{}, err
	}
	defer unlock()

	for _, id := range []int64{memberID, managerID} {
		ok, err := s.repo.MemberExists(ctx, tenantID, id)
		if err != nil {
			return Assignment{}, err
		}
		if !ok {
			return Assignment{}, shared.ErrNotFound
		}
	}

	// A manager inside the member's own subtree would close a loop.
	inSubtree, err := s.repo.IsInSubtree(ctx, memberID, managerID)
	if err != nil {
		return Assignment{}, err
	}
	if inSubtree {
		return Assignment{}, ErrCycle
	}

	if err := s.repo.SetManager(ctx, tenantID, memberID, &managerID); err != nil {
		return Assignment{}, err
	}
	s.invalidate(ctx, MutationAssignManager)
	s.record(ctx, tenantID, actorID, "assign_manager", memberID, map[string]any{"manager_id": managerID})
	return Assignment{MemberID: memberID, ManagerID: &managerID, ChangedAt: time.Now().UTC()}, nil
}

// RemoveManager detaches a member from their manager.
func (s *Service) RemoveManager(ctx context.Context, tenantID, actorID, memberID int64) (Assignment, error) {
	unlock, err := s.acquireLock(ctx, tenantID)
	if err != nil {
		return Assignment{}, err
	}
	defer unlock()

	if err := s.repo.SetManager(ctx, tenantID, memberID, nil); err != nil {
		return Assignment{}, err
	}
	s.invalidate(ctx, MutationRemoveManager)
	s.record(ctx, tenantID, actorID, "remove_manager", memberID, nil)
	return Assignment{MemberID: memberID, ManagerID: nil, ChangedAt: time.Now().UTC()}, nil
}

func (s *Service) acquireLock(ctx context.Context, tenantID int64) (func(), error) {
	if s.locks == nil {
		return func() {}, nil
	}
	key := shared.TeamLockKey(tenantID)
	ok, err := s.locks.SetNX(ctx, key, "1", 5*time.Second).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBusy
	}
	return func() { _ = s.locks.Del(context.WithoutCancel(ctx), key).Err() }, nil
}

func (s *Service) invalidate(ctx context.Context, mutation string) {
	if err := s.cache.Invalidate(ctx, mutation); err != nil {
		s.logger.Warn("invalidate cache", slog.String("mutation", mutation), slog.Any("error", err))
	}
}

func (s *Service) record(ctx context.Context, tenantID, actorID int64, action string, memberID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		TenantID: tenantID,
		Action:   action,
		Entity:   "team_member",
		EntityID: strconv.FormatInt(memberID, 10),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}
