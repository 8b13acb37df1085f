package matching

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/peopleflow/peopleflow/internal/candidates"
	"github.com/peopleflow/peopleflow/internal/openings"
	"github.com/peopleflow/peopleflow/internal/platform/cache"
)

// Service computes and caches candidate rankings per opening.
type Service struct {
	logger     *slog.Logger
	openings   openings.Repository
	candidates candidates.Repository
	cache      *cache.QueryCache
}

func NewService(logger *slog.Logger, op openings.Repository, cand candidates.Repository, qc *cache.QueryCache) *Service {
	return &Service{logger: logger, openings: op, candidates: cand, cache: qc}
}

// MatchesForOpening returns ranked candidates for one posting, cached
// under the matching namespace.
func (s *Service) MatchesForOpening(ctx context.Context, tenantID, openingID int64) ([]Match, error) {
	key := cache.Key("matching", fmt.Sprintf("%d", tenantID), fmt.Sprintf("%d", openingID))
	var matches []Match
	err := s.cache.FetchJSON(ctx, key, &matches, func(ctx context.Context) (interface{}, error) {
		return s.compute(ctx, tenantID, openingID)
	})
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []Match{}
	}
	return matches, nil
}

// Refresh recomputes matches for every open posting of a tenant and
// drops stale cached lists. The worker calls this after candidate or
// posting churn.
func (s *Service) Refresh(ctx context.Context, tenantID int64) (int, error) {
	open, _, err := s.openings.List(ctx, tenantID, openings.ListFilter{Status: openings.StatusOpen, Limit: 100})
	if err != nil {
		return 0, fmt.Errorf("list open postings: %w", err)
	}
	// Drop only this tenant's lists so an all-tenants sweep does not
	// evict sets just warmed for the others.
	prefix := cache.Key("matching", fmt.Sprintf("%d", tenantID)) + ":"
	if err := s.cache.InvalidatePrefix(ctx, prefix); err != nil {
		s.logger.Warn("cache invalidation failed", "prefix", prefix, "error", err)
	}
	refreshed := 0
	for _, o := range open {
		if _, err := s.MatchesForOpening(ctx, tenantID, o.ID); err != nil {
			s.logger.Warn("refresh matches", "opening_id", o.ID, "error", err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *Service) compute(ctx context.Context, tenantID, openingID int64) ([]Match, error) {
	opening, err := s.openings.Get(ctx, tenantID, openingID)
	if err != nil {
		return nil, err
	}
	pool, _, err := s.candidates.List(ctx, tenantID, candidates.ListFilter{Limit: 100})
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	profiles := make([]Profile, 0, len(pool))
	for _, c := range pool {
		profiles = append(profiles, Profile{
			ID:     c.ID,
			Name:   c.FirstName + " " + c.LastName,
			Skills: c.Skills,
		})
	}
	return Rank(opening.Skills, profiles), nil
}
