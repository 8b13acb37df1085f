package candidates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/peopleflow/peopleflow/internal/platform/cache"
	"github.com/peopleflow/peopleflow/internal/platform/validate"
	"github.com/peopleflow/peopleflow/internal/shared"
)

// Mutation names recognised by the cache invalidation table.
const (
	MutationCreate = "candidates.create"
	MutationUpdate = "candidates.update"
	MutationDelete = "candidates.delete"
	MutationAssign = "candidates.assign"
	MutationStatus = "candidates.status"
)

// ErrBadTransition is returned for an onboarding move the state machine
// does not allow.
var ErrBadTransition = errors.New("onboarding status transition not allowed")

var nameCaser = cases.Title(language.Und)

// Service implements candidate use cases.
type Service struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.QueryCache
	audit  *shared.AuditLogger
}

func NewService(logger *slog.Logger, repo Repository, qc *cache.QueryCache, audit *shared.AuditLogger) *Service {
	return &Service{logger: logger, repo: repo, cache: qc, audit: audit}
}

func (s *Service) List(ctx context.Context, tenantID int64, filter ListFilter) ([]Candidate, int, error) {
	return s.repo.List(ctx, tenantID, filter)
}

func (s *Service) Get(ctx context.Context, tenantID, id int64) (Candidate, error) {
	return s.repo.Get(ctx, tenantID, id)
}

func (s *Service) Create(ctx context.Context, tenantID, actorID int64, input CreateInput) (Candidate, error) {
	if err := validate.Struct(input); err != nil {
		return Candidate{}, err
	}
	created, err := s.repo.Create(ctx, Candidate{
		TenantID:         tenantID,
		FirstName:        normalizeName(input.FirstName),
		LastName:         normalizeName(input.LastName),
		Email:            strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:            strings.TrimSpace(input.Phone),
		Skills:           normalizeSkills(input.Skills),
		OnboardingStatus: StatusPending,
	})
	if err != nil {
		return Candidate{}, err
	}
	s.invalidate(ctx, MutationCreate)
	s.record(ctx, tenantID, actorID, "candidate.create", created.ID, nil)
	return created, nil
}

func (s *Service) Update(ctx context.Context, tenantID, actorID, id int64, input UpdateInput) (Candidate, error) {
	if err := validate.Struct(input); err != nil {
		return Candidate{}, err
	}
	current, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return Candidate{}, err
	}
	current.FirstName = normalizeName(input.FirstName)
	current.LastName = normalizeName(input.LastName)
	current.Email = strings.ToLower(strings.TrimSpace(input.Email))
	current.Phone = strings.TrimSpace(input.Phone)
	current.Skills = normalizeSkills(input.Skills)

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return Candidate{}, err
	}
	s.invalidate(ctx, MutationUpdate)
	s.record(ctx, tenantID, actorID, "candidate.update", id, nil)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, actorID, id int64) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.invalidate(ctx, MutationDelete)
	s.record(ctx, tenantID, actorID, "candidate.delete", id, nil)
	return nil
}

// AssignRecruiter hands the candidate to a recruiter, or releases them
// when recruiterID is nil.
func (s *Service) AssignRecruiter(ctx context.Context, tenantID, actorID, id int64, recruiterID *int64) error {
	if err := s.repo.AssignRecruiter(ctx, tenantID, id, recruiterID); err != nil {
		return err
	}
	s.invalidate(ctx, MutationAssign)
	meta := map[string]any{"recruiter_id": recruiterID}
	s.record(ctx, tenantID, actorID, "candidate.assign", id, meta)
	return nil
}

// Advance moves onboarding to the requested state, enforcing legal
// transitions only.
func (s *Service) Advance(ctx context.Context, tenantID, actorID, id int64, next OnboardingStatus) (Candidate, error) {
	if !next.Valid() {
		return Candidate{}, fmt.Errorf("%w: unknown status %q", ErrBadTransition, next)
	}
	current, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return Candidate{}, err
	}
	if !current.OnboardingStatus.CanTransitionTo(next) {
		return Candidate{}, fmt.Errorf("%w: %s to %s", ErrBadTransition, current.OnboardingStatus, next)
	}
	if err := s.repo.SetStatus(ctx, tenantID, id, next); err != nil {
		return Candidate{}, err
	}
	current.OnboardingStatus = next
	s.invalidate(ctx, MutationStatus)
	s.record(ctx, tenantID, actorID, "candidate.status", id, map[string]any{"status": string(next)})
	return current, nil
}

func (s *Service) invalidate(ctx context.Context, mutation string) {
	if err := s.cache.Invalidate(ctx, mutation); err != nil {
		s.logger.Warn("cache invalidation failed", "mutation", mutation, "error", err)
	}
}

func (s *Service) record(ctx context.Context, tenantID, actorID int64, action string, candidateID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditLog{
		ActorID:  actorID,
		TenantID: tenantID,
		Action:   action,
		Entity:   "candidate",
		EntityID: fmt.Sprintf("%d", candidateID),
		Meta:     meta,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}

func normalizeName(name string) string {
	return nameCaser.String(strings.ToLower(strings.TrimSpace(name)))
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" {
			continue
		}
		if _, dup := seen[skill]; dup {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}
	return out
}
