package submissions

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peopleflow/peopleflow/internal/shared"
)

type memoryRepo struct {
	nextID  int64
	records map[int64]Submission
	history map[int64][]StatusChange
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextID:  1,
		records: make(map[int64]Submission),
		history: make(map[int64][]StatusChange),
	}
}

func (m *memoryRepo) List(_ context.Context, tenantID int64, filter ListFilter) ([]Submission, int, error) {
	out := make([]Submission, 0)
	for _, s := range m.records {
		if s.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.OpeningID != nil && s.OpeningID != *filter.OpeningID {
			continue
		}
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, tenantID, id int64) (Submission, error) {
	s, ok := m.records[id]
	if !ok || s.TenantID != tenantID {
		return Submission{}, shared.ErrNotFound
	}
	return s, nil
}

func (m *memoryRepo) Create(_ context.Context, s Submission) (Submission, error) {
	for _, existing := range m.records {
		if existing.TenantID == s.TenantID &&
			existing.OpeningID == s.OpeningID &&
			existing.CandidateID == s.CandidateID {
			return Submission{}, errDuplicateSubmission
		}
	}
	s.ID = m.nextID
	m.nextID++
	m.records[s.ID] = s
	return s, nil
}

func (m *memoryRepo) SetStatus(_ context.Context, tenantID, id int64, from, to Status, changedBy int64, note string) error {
	s, ok := m.records[id]
	if !ok || s.TenantID != tenantID || s.Status != from {
		return shared.ErrNotFound
	}
	s.Status = to
	m.records[id] = s
	m.history[id] = append(m.history[id], StatusChange{
		SubmissionID: id, FromStatus: from, ToStatus: to, ChangedBy: changedBy, Note: note,
	})
	return nil
}

func (m *memoryRepo) History(_ context.Context, _ int64, id int64) ([]StatusChange, error) {
	return m.history[id], nil
}

func (m *memoryRepo) Notification(_ context.Context, tenantID, id int64) (Notification, error) {
	s, ok := m.records[id]
	if !ok || s.TenantID != tenantID {
		return Notification{}, shared.ErrNotFound
	}
	return Notification{
		SubmitterEmail: "recruiter@acme.test",
		CandidateName:  "Jordan Blake",
		OpeningTitle:   "Senior Go Engineer",
	}, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, newMemoryRepo(), nil, nil, nil)
}

func submit(t *testing.T, svc *Service) Submission {
	t.Helper()
	sub, err := svc.Create(context.Background(), 1, 7, CreateInput{OpeningID: 3, CandidateID: 5}, "")
	require.NoError(t, err)
	return sub
}

func TestCreateStartsSubmitted(t *testing.T) {
	svc := newTestService(t)

	sub := submit(t, svc)
	require.Equal(t, StatusSubmitted, sub.Status)
	require.Equal(t, int64(7), sub.SubmittedBy)
}

func TestCreateRejectsDuplicatePair(t *testing.T) {
	svc := newTestService(t)
	submit(t, svc)

	_, err := svc.Create(context.Background(), 1, 7, CreateInput{OpeningID: 3, CandidateID: 5}, "")
	require.ErrorIs(t, err, errDuplicateSubmission)
}

func TestPipelineHappyPath(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sub := submit(t, svc)

	for _, next := range []Status{StatusReview, StatusInterview, StatusOffer, StatusHired} {
		var err error
		sub, err = svc.Advance(ctx, 1, 7, sub.ID, next, "")
		require.NoError(t, err)
		require.Equal(t, next, sub.Status)
	}

	// hired is terminal
	_, err := svc.Advance(ctx, 1, 7, sub.ID, StatusReview, "")
	require.ErrorIs(t, err, ErrBadTransition)
}

func TestPipelineNoStageSkipping(t *testing.T) {
	svc := newTestService(t)
	sub := submit(t, svc)

	_, err := svc.Advance(context.Background(), 1, 7, sub.ID, StatusOffer, "")
	require.ErrorIs(t, err, ErrBadTransition)
}

func TestRejectionFromAnyLiveStage(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sub := submit(t, svc)

	sub, err := svc.Advance(ctx, 1, 7, sub.ID, StatusReview, "")
	require.NoError(t, err)

	sub, err = svc.Advance(ctx, 1, 7, sub.ID, StatusRejected, "not a fit")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, sub.Status)

	// rejected is terminal too
	_, err = svc.Advance(ctx, 1, 7, sub.ID, StatusReview, "")
	require.ErrorIs(t, err, ErrBadTransition)
}

func TestHistoryRecordsEveryMove(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sub := submit(t, svc)

	_, err := svc.Advance(ctx, 1, 7, sub.ID, StatusReview, "looks good")
	require.NoError(t, err)
	_, err = svc.Advance(ctx, 1, 7, sub.ID, StatusInterview, "")
	require.NoError(t, err)

	history, err := svc.History(ctx, 1, sub.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, StatusSubmitted, history[0].FromStatus)
	require.Equal(t, StatusReview, history[0].ToStatus)
	require.Equal(t, "looks good", history[0].Note)
	require.Equal(t, StatusInterview, history[1].ToStatus)
}

func TestAdvanceNotifiesSubmitter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var gotTo, gotSubject, gotBody string
	svc.SetNotifier(func(_ context.Context, to, subject, body string) {
		gotTo, gotSubject, gotBody = to, subject, body
	})

	sub := submit(t, svc)
	_, err := svc.Advance(ctx, 1, 7, sub.ID, StatusReview, "")
	require.NoError(t, err)

	require.Equal(t, "recruiter@acme.test", gotTo)
	require.Contains(t, gotSubject, "Jordan Blake")
	require.Contains(t, gotSubject, "review")
	require.Contains(t, gotBody, "Senior Go Engineer")
}

func TestCreateValidatesInput(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), 1, 7, CreateInput{OpeningID: 0, CandidateID: 5}, "")
	require.Error(t, err)
}
