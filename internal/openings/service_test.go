package openings

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peopleflow/peopleflow/internal/platform/httpx"
	"github.com/peopleflow/peopleflow/internal/shared"
)

type memoryRepo struct {
	nextID  int64
	records map[int64]Opening
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, records: make(map[int64]Opening)}
}

func (m *memoryRepo) List(_ context.Context, tenantID int64, filter ListFilter) ([]Opening, int, error) {
	out := make([]Opening, 0)
	for _, o := range m.records {
		if o.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, tenantID, id int64) (Opening, error) {
	o, ok := m.records[id]
	if !ok || o.TenantID != tenantID {
		return Opening{}, shared.ErrNotFound
	}
	return o, nil
}

func (m *memoryRepo) Create(_ context.Context, o Opening) (Opening, error) {
	o.ID = m.nextID
	m.nextID++
	m.records[o.ID] = o
	return o, nil
}

func (m *memoryRepo) Update(_ context.Context, o Opening) (Opening, error) {
	if _, ok := m.records[o.ID]; !ok {
		return Opening{}, shared.ErrNotFound
	}
	m.records[o.ID] = o
	return o, nil
}

func (m *memoryRepo) Delete(_ context.Context, tenantID, id int64) error {
	o, ok := m.records[id]
	if !ok || o.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memoryRepo) SetStatus(_ context.Context, tenantID, id int64, status Status) error {
	o, ok := m.records[id]
	if !ok || o.TenantID != tenantID {
		return shared.ErrNotFound
	}
	o.Status = status
	m.records[id] = o
	return nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, newMemoryRepo(), nil, nil)
}

func validInput() Input {
	return Input{
		Title:          "Backend Engineer",
		Description:    "Build services.",
		EmploymentType: "full_time",
		Skills:         []string{"Go", "SQL"},
	}
}

func TestCreateOpensPosting(t *testing.T) {
	svc := newTestService(t)

	o, err := svc.Create(context.Background(), 1, 7, validInput())
	require.NoError(t, err)
	require.Equal(t, StatusOpen, o.Status)
	require.Equal(t, int64(7), o.CreatedBy)
	require.Equal(t, []string{"go", "sql"}, o.Skills)
}

func TestCreateRejectsBadEmploymentType(t *testing.T) {
	svc := newTestService(t)

	in := validInput()
	in.EmploymentType = "gig"
	_, err := svc.Create(context.Background(), 1, 7, in)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateRefusedWhenClosed(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, 7, validInput())
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, 1, 7, o.ID, StatusClosed)
	require.NoError(t, err)

	_, err = svc.Update(ctx, 1, 7, o.ID, validInput())
	require.ErrorIs(t, err, ErrClosed)
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, 7, validInput())
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, 1, 7, o.ID, Status("archived"))
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestReopenAfterClose(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, 7, validInput())
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, 1, 7, o.ID, StatusClosed)
	require.NoError(t, err)

	reopened, err := svc.SetStatus(ctx, 1, 7, o.ID, StatusOpen)
	require.NoError(t, err)
	require.Equal(t, StatusOpen, reopened.Status)
}

func TestGetOtherTenantNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, 7, validInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, o.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
