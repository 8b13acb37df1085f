package users

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
	records map[int64]User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, records: make(map[int64]User)}
}

func (m *memoryRepo) List(_ context.Context, tenantID int64, filter ListFilter) ([]User, int, error) {
	out := make([]User, 0)
	for _, u := range m.records {
		if u.TenantID != tenantID {
			continue
		}
		if filter.Active != nil && u.IsActive != *filter.Active {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, tenantID, id int64) (User, error) {
	u, ok := m.records[id]
	if !ok || u.TenantID != tenantID {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) Create(_ context.Context, u User, _ string) (User, error) {
	for _, existing := range m.records {
		if existing.TenantID == u.TenantID && existing.Email == u.Email {
			return User{}, errDuplicateEmail
		}
	}
	u.ID = m.nextID
	u.IsActive = true
	m.nextID++
	m.records[u.ID] = u
	return u, nil
}

func (m *memoryRepo) Update(_ context.Context, u User) (User, error) {
	if _, ok := m.records[u.ID]; !ok {
		return User{}, shared.ErrNotFound
	}
	m.records[u.ID] = u
	return u, nil
}

func newTestService() *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, newMemoryRepo(), nil, nil)
}

func TestCreateActivatesMember(t *testing.T) {
	svc := newTestService()

	u, err := svc.Create(context.Background(), 1, 9, CreateInput{
		Email: " New@Example.com ", FullName: "New Member", Password: "long-enough-secret",
	})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", u.Email)
	require.True(t, u.IsActive)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	in := CreateInput{Email: "new@example.com", FullName: "New", Password: "long-enough-secret"}
	_, err := svc.Create(ctx, 1, 9, in)
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, 9, in)
	require.ErrorIs(t, err, errDuplicateEmail)
}

func TestUpdateDeactivates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Create(ctx, 1, 9, CreateInput{
		Email: "new@example.com", FullName: "New", Password: "long-enough-secret",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, 1, 9, u.ID, UpdateInput{FullName: "New Name", IsActive: false})
	require.NoError(t, err)
	require.False(t, updated.IsActive)
	require.Equal(t, "New Name", updated.FullName)
}

func TestGetAcrossTenantsNotFound(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Create(ctx, 1, 9, CreateInput{
		Email: "new@example.com", FullName: "New", Password: "long-enough-secret",
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, u.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
