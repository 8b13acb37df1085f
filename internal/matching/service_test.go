package matching

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/peopleflow/peopleflow/internal/candidates"
	"github.com/peopleflow/peopleflow/internal/openings"
	"github.com/peopleflow/peopleflow/internal/platform/cache"
	"github.com/peopleflow/peopleflow/internal/shared"
)

var errReadOnly = errors.New("read-only fixture")

// openingsStub serves one open posting per tenant, ID = tenantID*10.
type openingsStub struct{}

func (openingsStub) List(_ context.Context, tenantID int64, _ openings.ListFilter) ([]openings.Opening, int, error) {
	o := openings.Opening{ID: tenantID * 10, TenantID: tenantID, Title: "Backend Engineer", Skills: []string{"go"}}
	return []openings.Opening{o}, 1, nil
}

func (openingsStub) Get(_ context.Context, tenantID, id int64) (openings.Opening, error) {
	if id != tenantID*10 {
		return openings.Opening{}, shared.ErrNotFound
	}
	return openings.Opening{ID: id, TenantID: tenantID, Title: "Backend Engineer", Skills: []string{"go"}}, nil
}

func (openingsStub) Create(context.Context, openings.Opening) (openings.Opening, error) {
	return openings.Opening{}, errReadOnly
}

func (openingsStub) Update(context.Context, openings.Opening) (openings.Opening, error) {
	return openings.Opening{}, errReadOnly
}

func (openingsStub) Delete(context.Context, int64, int64) error { return errReadOnly }

func (openingsStub) SetStatus(context.Context, int64, int64, openings.Status) error {
	return errReadOnly
}

type candidatesStub struct{}

func (candidatesStub) List(_ context.Context, tenantID int64, _ candidates.ListFilter) ([]candidates.Candidate, int, error) {
	c := candidates.Candidate{ID: tenantID * 100, TenantID: tenantID, FirstName: "Ada", LastName: "Gopher", Skills: []string{"go"}}
	return []candidates.Candidate{c}, 1, nil
}

func (candidatesStub) Get(context.Context, int64, int64) (candidates.Candidate, error) {
	return candidates.Candidate{}, shared.ErrNotFound
}

func (candidatesStub) Create(context.Context, candidates.Candidate) (candidates.Candidate, error) {
	return candidates.Candidate{}, errReadOnly
}

func (candidatesStub) Update(context.Context, candidates.Candidate) (candidates.Candidate, error) {
	return candidates.Candidate{}, errReadOnly
}

func (candidatesStub) Delete(context.Context, int64, int64) error { return errReadOnly }

func (candidatesStub) AssignRecruiter(context.Context, int64, int64, *int64) error {
	return errReadOnly
}

func (candidatesStub) SetStatus(context.Context, int64, int64, candidates.OnboardingStatus) error {
	return errReadOnly
}

func newRefreshFixture(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	qc := cache.NewQueryCache(client, time.Minute)
	return NewService(logger, openingsStub{}, candidatesStub{}, qc), mr
}

func matchKey(tenantID int64) string {
	return cache.Key("matching", fmt.Sprintf("%d", tenantID), fmt.Sprintf("%d", tenantID*10))
}

func TestRefreshWarmsTenantMatchSets(t *testing.T) {
	svc, mr := newRefreshFixture(t)

	n, err := svc.Refresh(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.True(t, mr.Exists(matchKey(1)))
}

func TestRefreshLeavesOtherTenantsWarm(t *testing.T) {
	svc, mr := newRefreshFixture(t)
	ctx := context.Background()

	_, err := svc.Refresh(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, 2)
	require.NoError(t, err)

	require.True(t, mr.Exists(matchKey(1)), "earlier tenant's match sets must stay warm")
	require.True(t, mr.Exists(matchKey(2)))
}
