package submissions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/peopleflow/peopleflow/internal/platform/cache"
	"github.com/peopleflow/peopleflow/internal/platform/validate"
	"github.com/peopleflow/peopleflow/internal/shared"
)

// Mutation names recognised by the cache invalidation table.
const (
	MutationCreate = "submissions.create"
	MutationReview = "submissions.review"
)

// ErrBadTransition is returned for a pipeline move the stage machine
// does not allow.
var ErrBadTransition = errors.New("pipeline transition not allowed")

// CreateInput is the payload for submitting a candidate to an opening.
type CreateInput struct {
	OpeningID   int64  `json:"opening_id" validate:"required,gt=0"`
	CandidateID int64  `json:"candidate_id" validate:"required,gt=0"`
	Notes       string `json:"notes" validate:"omitempty,max=2000"`
}

// Service implements submission use cases.
type Service struct {
	logger      *slog.Logger
	repo        Repository
	cache       *cache.QueryCache
	idempotency *shared.IdempotencyStore
	audit       *shared.AuditLogger
	notify      func(ctx context.Context, to, subject, body string)
}

func NewService(logger *slog.Logger, repo Repository, qc *cache.QueryCache, idem *shared.IdempotencyStore, audit *shared.AuditLogger) *Service {
	return &Service{logger: logger, repo: repo, cache: qc, idempotency: idem, audit: audit}
}

// SetNotifier installs the callback used to send status change mail to the
// submitting recruiter. Without one, pipeline moves stay silent.
func (s *Service) SetNotifier(fn func(ctx context.Context, to, subject, body string)) {
	s.notify = fn
}

func (s *Service) List(ctx context.Context, tenantID int64, filter ListFilter) ([]Submission, int, error) {
	return s.repo.List(ctx, tenantID, filter)
}

func (s *Service) Get(ctx context.Context, tenantID, id int64) (Submission, error) {
	return s.repo.Get(ctx, tenantID, id)
}

func (s *Service) History(ctx context.Context, tenantID, id int64) ([]StatusChange, error) {
	if _, err := s.repo.Get(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, tenantID, id)
}

// Create submits a candidate. When idempotencyKey is non-empty a replayed
// request returns ErrIdempotencyConflict instead of a second submission.
func (s *Service) Create(ctx context.Context, tenantID, actorID int64, input CreateInput, idempotencyKey string) (Submission, error) {
	if err := validate.Struct(input); err != nil {
		return Submission{}, err
	}
	if idempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, idempotencyKey, "submissions"); err != nil {
			return Submission{}, err
		}
	}
	created, err := s.repo.Create(ctx, Submission{
		TenantID:    tenantID,
		OpeningID:   input.OpeningID,
		CandidateID: input.CandidateID,
		Status:      StatusSubmitted,
		Notes:       input.Notes,
		SubmittedBy: actorID,
	})
	if err != nil {
		if idempotencyKey != "" && s.idempotency != nil {
			if derr := s.idempotency.Delete(ctx, idempotencyKey); derr != nil {
				s.logger.Warn("idempotency rollback failed", "key", idempotencyKey, "error", derr)
			}
		}
		return Submission{}, err
	}
	s.invalidate(ctx, MutationCreate)
	s.record(ctx, tenantID, actorID, "submission.create", created.ID, map[string]any{
		"opening_id":   input.OpeningID,
		"candidate_id": input.CandidateID,
	})
	return created, nil
}

// Advance moves a submission through the pipeline, enforcing legal
// transitions only.
func (s *Service) Advance(ctx context.Context, tenantID, actorID, id int64, next Status, note string) (Submission, error) {
	if !next.Valid() {
		return Submission{}, fmt.Errorf("%w: unknown stage %q", ErrBadTransition, next)
	}
	current, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return Submission{}, err
	}
	if !current.Status.CanTransitionTo(next) {
		return Submission{}, fmt.Errorf("%w: %s to %s", ErrBadTransition, current.Status, next)
	}
	if err := s.repo.SetStatus(ctx, tenantID, id, current.Status, next, actorID, note); err != nil {
		return Submission{}, err
	}
	from := current.Status
	current.Status = next
	s.invalidate(ctx, MutationReview)
	s.record(ctx, tenantID, actorID, "submission.status", id, map[string]any{
		"from": string(from),
		"to":   string(next),
	})
	s.sendStatusMail(ctx, tenantID, id, next)
	return current, nil
}

func (s *Service) sendStatusMail(ctx context.Context, tenantID, id int64, next Status) {
	if s.notify == nil {
		return
	}
	info, err := s.repo.Notification(ctx, tenantID, id)
	if err != nil {
		s.logger.Warn("notification lookup failed", "submission_id", id, "error", err)
		return
	}
	subject := fmt.Sprintf("Submission update: %s is now %s", info.CandidateName, next)
	body := fmt.Sprintf("%s moved to stage %q for the opening %q.",
		info.CandidateName, next, info.OpeningTitle)
	s.notify(ctx, info.SubmitterEmail, subject, body)
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
		Entity:   "submission",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", "action", action, "error", err)
	}
}
