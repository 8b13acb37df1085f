package openings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/peopleflow/peopleflow/internal/platform/cache"
	"github.com/peopleflow/peopleflow/internal/platform/httpx"
	"github.com/peopleflow/peopleflow/internal/platform/validate"
	"github.com/peopleflow/peopleflow/internal/shared"
)

// Mutation names recognised by the cache invalidation table.
const (
	MutationCreate = "openings.create"
	MutationUpdate = "openings.update"
	MutationDelete = "openings.delete"
)

// ErrClosed is returned when editing a closed posting.
var ErrClosed = errors.New("opening is closed")

// Service implements posting use cases.
type Service struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.QueryCache
	audit  *shared.AuditLogger
}

func NewService(logger *slog.Logger, repo Repository, qc *cache.QueryCache, audit *shared.AuditLogger) *Service {
	return &Service{logger: logger, repo: repo, cache: qc, audit: audit}
}

func (s *Service) List(ctx context.Context, tenantID int64, filter ListFilter) ([]Opening, int, error) {
	return s.repo.List(ctx, tenantID, filter)
}

func (s *Service) Get(ctx context.Context, tenantID, id int64) (Opening, error) {
	return s.repo.Get(ctx, tenantID, id)
}

func (s *Service) Create(ctx context.Context, tenantID, actorID int64, input Input) (Opening, error) {
	if err := validate.Struct(input); err != nil {
		return Opening{}, err
	}
	created, err := s.repo.Create(ctx, Opening{
		TenantID:       tenantID,
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Department:     strings.TrimSpace(input.Department),
		Location:       strings.TrimSpace(input.Location),
		EmploymentType: input.EmploymentType,
		Skills:         normalizeSkills(input.Skills),
		Status:         StatusOpen,
		CreatedBy:      actorID,
	})
	if err != nil {
		return Opening{}, err
	}
	s.invalidate(ctx, MutationCreate)
	s.record(ctx, tenantID, actorID, "opening.create", created.ID, nil)
	return created, nil
}

func (s *Service) Update(ctx context.Context, tenantID, actorID, id int64, input Input) (Opening, error) {
	if err := validate.Struct(input); err != nil {
		return Opening{}, err
	}
	current, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return Opening{}, err
	}
	if current.Status == StatusClosed {
		return Opening{}, ErrClosed
	}
	current.Title = strings.TrimSpace(input.Title)
	current.Description = strings.TrimSpace(input.Description)
	current.Department = strings.TrimSpace(input.Department)
	current.Location = strings.TrimSpace(input.Location)
	current.EmploymentType = input.EmploymentType
	current.Skills = normalizeSkills(input.Skills)

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return Opening{}, err
	}
	s.invalidate(ctx, MutationUpdate)
	s.record(ctx, tenantID, actorID, "opening.update", id, nil)
	return updated, nil
}

// SetStatus moves the posting lifecycle. Reopening a closed posting is
// allowed; the guard above only blocks content edits.
func (s *Service) SetStatus(ctx context.Context, tenantID, actorID, id int64, status Status) (Opening, error) {
	if !status.Valid() {
		return Opening{}, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, status)
	}
	current, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return Opening{}, err
	}
	if err := s.repo.SetStatus(ctx, tenantID, id, status); err != nil {
		return Opening{}, err
	}
	current.Status = status
	s.invalidate(ctx, MutationUpdate)
	s.record(ctx, tenantID, actorID, "opening.status", id, map[string]any{"status": string(status)})
	return current, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, actorID, id int64) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.invalidate(ctx, MutationDelete)
	s.record(ctx, tenantID, actorID, "opening.delete", id, nil)
	return nil
}

func (s *Service) invalidate(ctx context.Context, mutation string) {
	if err := s.cache.Invalidate(ctx, mutation); err != nil {
		s.logger.Warn("cache invalidation failed", "mutation", mutation, "error", err)
	}
}

func (s *Service) record(ctx context.Context, tenantID, actorID int64, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditLog{
		ActorID:  actorID,
		TenantID: tenantID,
		Action:   action,
		Entity:   "opening",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
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
