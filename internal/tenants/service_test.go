package tenants

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/peopleflow/peopleflow/internal/platform/cache"
	"github.com/peopleflow/peopleflow/internal/shared"
)

type memoryRepo struct {
	mu         sync.Mutex
	nextID     int64
	records    map[int64]Tenant
	statsCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, records: make(map[int64]Tenant)}
}

func (m *memoryRepo) List(_ context.Context, _, _ int) ([]Tenant, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Tenant, 0, len(m.records))
	for _, t := range m.records {
		out = append(out, t)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.records[id]
	if !ok {
		return Tenant{}, shared.ErrNotFound
	}
	return t, nil
}

func (m *memoryRepo) Create(_ context.Context, t Tenant) (Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.Slug == t.Slug {
			return Tenant{}, errDuplicateSlug
		}
	}
	t.ID = m.nextID
	m.nextID++
	m.records[t.ID] = t
	return t, nil
}

func (m *memoryRepo) Update(_ context.Context, t Tenant) (Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[t.ID]; !ok {
		return Tenant{}, shared.ErrNotFound
	}
	m.records[t.ID] = t
	return t, nil
}

func (m *memoryRepo) SetStatus(_ context.Context, id int64, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.records[id]
	if !ok {
		return shared.ErrNotFound
	}
	t.Status = status
	m.records[id] = t
	return nil
}

func (m *memoryRepo) Stats(_ context.Context, id int64) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsCalls++
	return Stats{TenantID: id, UserCount: 3, CandidateCount: 12}, nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	qc := cache.NewQueryCache(client, 30*time.Second)
	return NewService(logger, repo, qc, nil), repo
}

func TestCreateNormalizesSlug(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), 1, CreateInput{
		Name: "Acme Corp", Slug: " Acme-Corp ", PlanID: 2,
	})
	require.NoError(t, err)
	require.Equal(t, "acme-corp", created.Slug)
	require.Equal(t, StatusActive, created.Status)
}

func TestCreateRejectsBadSlug(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), 1, CreateInput{
		Name: "Acme", Slug: "acme corp!", PlanID: 2,
	})
	require.Error(t, err)
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, CreateInput{Name: "Acme", Slug: "acme", PlanID: 2})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, CreateInput{Name: "Acme Two", Slug: "acme", PlanID: 2})
	require.ErrorIs(t, err, errDuplicateSlug)
}

func TestSuspendAndActivate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{Name: "Acme", Slug: "acme", PlanID: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Suspend(ctx, 1, created.ID))
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSuspended, got.Status)

	require.NoError(t, svc.Activate(ctx, 1, created.ID))
	got, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusActive, got.Status)
}

func TestStatsCachedUntilMutation(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateInput{Name: "Acme", Slug: "acme", PlanID: 2})
	require.NoError(t, err)

	first, err := svc.Stats(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 12, first.CandidateCount)
	require.Equal(t, 1, repo.statsCalls)

	_, err = svc.Stats(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, repo.statsCalls)

	_, err = svc.Update(ctx, 1, created.ID, UpdateInput{Name: "Acme Renamed", PlanID: 2})
	require.NoError(t, err)

	_, err = svc.Stats(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, repo.statsCalls)
}

func TestStatsUnknownTenant(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Stats(context.Background(), 99)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
