package candidates

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peopleflow/peopleflow/internal/shared"
)

type memoryRepo struct {
	nextID  int64
	records map[int64]Candidate
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, records: make(map[int64]Candidate)}
}

func (m *memoryRepo) List(_ context.Context, tenantID int64, filter ListFilter) ([]Candidate, int, error) {
	out := make([]Candidate, 0)
	for _, c := range m.records {
		if c.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && c.OnboardingStatus != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.LastName), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.RecruiterID != nil && (c.RecruiterID == nil || *c.RecruiterID != *filter.RecruiterID) {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, tenantID, id int64) (Candidate, error) {
	c, ok := m.records[id]
	if !ok || c.TenantID != tenantID {
		return Candidate{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) Create(_ context.Context, c Candidate) (Candidate, error) {
	for _, existing := range m.records {
		if existing.TenantID == c.TenantID && existing.Email == c.Email {
			return Candidate{}, errDuplicateEmail
		}
	}
	c.ID = m.nextID
	m.nextID++
	m.records[c.ID] = c
	return c, nil
}

func (m *memoryRepo) Update(_ context.Context, c Candidate) (Candidate, error) {
	if _, ok := m.records[c.ID]; !ok {
		return Candidate{}, shared.ErrNotFound
	}
	m.records[c.ID] = c
	return c, nil
}

func (m *memoryRepo) Delete(_ context.Context, tenantID, id int64) error {
	c, ok := m.records[id]
	if !ok || c.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memoryRepo) AssignRecruiter(_ context.Context, tenantID, id int64, recruiterID *int64) error {
	c, ok := m.records[id]
	if !ok || c.TenantID != tenantID {
		return shared.ErrNotFound
	}
	c.RecruiterID = recruiterID
	m.records[id] = c
	return nil
}

func (m *memoryRepo) SetStatus(_ context.Context, tenantID, id int64, status OnboardingStatus) error {
	c, ok := m.records[id]
	if !ok || c.TenantID != tenantID {
		return shared.ErrNotFound
	}
	c.OnboardingStatus = status
	m.records[id] = c
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, repo, nil, nil), repo
}

func TestCreateNormalizesNamesAndSkills(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), 1, 9, CreateInput{
		FirstName: "  aDa ",
		LastName:  "LOVELACE",
		Email:     " Ada@Example.COM ",
		Skills:    []string{" Go ", "go", "SQL", ""},
	})
	require.NoError(t, err)
	require.Equal(t, "Ada", created.FirstName)
	require.Equal(t, "Lovelace", created.LastName)
	require.Equal(t, "ada@example.com", created.Email)
	require.Equal(t, []string{"go", "sql"}, created.Skills)
	require.Equal(t, StatusPending, created.OnboardingStatus)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), 1, 9, CreateInput{
		FirstName: "Ada",
		Email:     "not-an-email",
	})
	require.Error(t, err)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	input := CreateInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	_, err := svc.Create(ctx, 1, 9, input)
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, 9, input)
	require.ErrorIs(t, err, errDuplicateEmail)
}

func TestOnboardingTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, 9, CreateInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
	})
	require.NoError(t, err)

	// pending cannot jump straight to completed
	_, err = svc.Advance(ctx, 1, 9, created.ID, StatusCompleted)
	require.ErrorIs(t, err, ErrBadTransition)

	c, err := svc.Advance(ctx, 1, 9, created.ID, StatusInProgress)
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, c.OnboardingStatus)

	c, err = svc.Advance(ctx, 1, 9, created.ID, StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, c.OnboardingStatus)

	// completed is terminal
	_, err = svc.Advance(ctx, 1, 9, created.ID, StatusPending)
	require.ErrorIs(t, err, ErrBadTransition)
}

func TestAdvanceRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, 9, CreateInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Advance(ctx, 1, 9, created.ID, OnboardingStatus("archived"))
	require.ErrorIs(t, err, ErrBadTransition)
}

func TestAssignRecruiterUnknownCandidate(t *testing.T) {
	svc, _ := newTestService(t)
	recruiter := int64(4)

	err := svc.AssignRecruiter(context.Background(), 1, 9, 999, &recruiter)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTenantIsolation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, 9, CreateInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
