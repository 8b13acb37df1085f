package tenants

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/peopleflow/peopleflow/internal/platform/cache"
	"github.com/peopleflow/peopleflow/internal/platform/httpx"
	"github.com/peopleflow/peopleflow/internal/platform/validate"
	"github.com/peopleflow/peopleflow/internal/shared"
)

// Mutation names recognised by the cache invalidation table.
const (
	MutationUpdate  = "tenants.update"
	MutationSuspend = "tenants.suspend"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

// CreateInput is the payload for provisioning a tenant.
type CreateInput struct {
	Name   string `json:"name" validate:"required,max=200"`
	Slug   string `json:"slug" validate:"required,min=2,max=63"`
	PlanID int64  `json:"plan_id" validate:"required,gt=0"`
}

// UpdateInput is the payload for editing tenant settings. Slug is fixed
// at provisioning time.
type UpdateInput struct {
	Name   string `json:"name" validate:"required,max=200"`
	PlanID int64  `json:"plan_id" validate:"required,gt=0"`
}

// Service implements tenant management for the platform console.
type Service struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.QueryCache
	audit  *shared.AuditLogger
	flight singleflight.Group
}

func NewService(logger *slog.Logger, repo Repository, qc *cache.QueryCache, audit *shared.AuditLogger) *Service {
	return &Service{logger: logger, repo: repo, cache: qc, audit: audit}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Tenant, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id int64) (Tenant, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actorID int64, input CreateInput) (Tenant, error) {
	if err := validate.Struct(input); err != nil {
		return Tenant{}, err
	}
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if !slugPattern.MatchString(slug) {
		return Tenant{}, fmt.Errorf("%w: slug must be lowercase alphanumeric with hyphens", httpx.ErrValidation)
	}
	created, err := s.repo.Create(ctx, Tenant{
		Name:   strings.TrimSpace(input.Name),
		Slug:   slug,
		PlanID: input.PlanID,
		Status: StatusActive,
	})
	if err != nil {
		return Tenant{}, err
	}
	s.record(ctx, actorID, "tenant.create", created.ID, nil)
	return created, nil
}

func (s *Service) Update(ctx context.Context, actorID, id int64, input UpdateInput) (Tenant, error) {
	if err := validate.Struct(input); err != nil {
		return Tenant{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Tenant{}, err
	}
	current.Name = strings.TrimSpace(input.Name)
	current.PlanID = input.PlanID

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return Tenant{}, err
	}
	s.invalidate(ctx, MutationUpdate)
	s.record(ctx, actorID, "tenant.update", id, nil)
	return updated, nil
}

// Suspend blocks a tenant's portal. Existing sessions keep working until
// they expire; new logins are refused upstream.
func (s *Service) Suspend(ctx context.Context, actorID, id int64) error {
	return s.setStatus(ctx, actorID, id, StatusSuspended)
}

// Activate lifts a suspension.
func (s *Service) Activate(ctx context.Context, actorID, id int64) error {
	return s.setStatus(ctx, actorID, id, StatusActive)
}

func (s *Service) setStatus(ctx context.Context, actorID, id int64, status Status) error {
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidate(ctx, MutationSuspend)
	s.record(ctx, actorID, "tenant.status", id, map[string]any{"status": string(status)})
	return nil
}

// Stats returns the usage summary, cached and deduplicated so a console
// dashboard refresh storm produces one database pass per tenant.
func (s *Service) Stats(ctx context.Context, id int64) (Stats, error) {
	key := cache.Key("tenants", "stats", fmt.Sprintf("%d", id))
	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		var stats Stats
		err := s.cache.FetchJSON(ctx, key, &stats, func(ctx context.Context) (interface{}, error) {
			if _, err := s.repo.Get(ctx, id); err != nil {
				return nil, err
			}
			return s.repo.Stats(ctx, id)
		})
		return stats, err
	})
	if err != nil {
		return Stats{}, err
	}
	return v.(Stats), nil
}

func (s *Service) invalidate(ctx context.Context, mutation string) {
	if err := s.cache.Invalidate(ctx, mutation); err != nil {
		s.logger.Warn("cache invalidation failed", "mutation", mutation, "error", err)
	}
}

func (s *Service) record(ctx context.Context, actorID int64, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "tenant",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
