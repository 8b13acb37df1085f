package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/peopleflow/peopleflow/internal/shared"
)

func newTestCache(t *testing.T) (*QueryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQueryCache(client, time.Minute), mr
}

func TestFetchJSONPopulatesOnMiss(t *testing.T) {
	qc, _ := newTestCache(t)

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return map[string]int{"total": 3}, nil
	}

	var out map[string]int
	require.NoError(t, qc.FetchJSON(context.Background(), Key("team", "members", "7"), &out, loader))
	require.Equal(t, 3, out["total"])
	require.Equal(t, 1, calls)

	out = nil
	require.NoError(t, qc.FetchJSON(context.Background(), Key("team", "members", "7"), &out, loader))
	require.Equal(t, 3, out["total"])
	require.Equal(t, 1, calls, "second read must be served from cache")
}

func TestFetchJSONReportsHitAndMiss(t *testing.T) {
	qc, _ := newTestCache(t)

	outcomes := []string{}
	qc.SetObserver(func(outcome string) { outcomes = append(outcomes, outcome) })

	loader := func(ctx context.Context) (interface{}, error) { return 42, nil }
	var out int
	require.NoError(t, qc.FetchJSON(context.Background(), "matching:top:5", &out, loader))
	require.NoError(t, qc.FetchJSON(context.Background(), "matching:top:5", &out, loader))

	require.Equal(t, []string{"miss", "hit"}, outcomes)
}

func TestFetchJSONNilCachePassthrough(t *testing.T) {
	var qc *QueryCache
	var out []string
	err := qc.FetchJSON(context.Background(), "any", &out, func(ctx context.Context) (interface{}, error) {
		return []string{"a", "b"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, out)
}

func TestInvalidateDropsNamespace(t *testing.T) {
	qc, mr := newTestCache(t)

	ctx := context.Background()
	seed := func(key string) {
		var out int
		require.NoError(t, qc.FetchJSON(ctx, key, &out, func(context.Context) (interface{}, error) { return 1, nil }))
	}
	seed("team:members:1")
	seed("team:member-candidates:9")
	seed("candidates:my:4")

	require.NoError(t, qc.Invalidate(ctx, "team.assign_manager"))

	require.False(t, mr.Exists("team:members:1"))
	require.False(t, mr.Exists("team:member-candidates:9"))
	require.True(t, mr.Exists("candidates:my:4"), "other namespaces must survive")
}

func TestInvalidateLeavesHierarchyLocksAlone(t *testing.T) {
	qc, mr := newTestCache(t)
	ctx := context.Background()

	var out int
	require.NoError(t, qc.FetchJSON(ctx, "team:members:7", &out, func(context.Context) (interface{}, error) { return 1, nil }))
	require.NoError(t, mr.Set(shared.TeamLockKey(7), "1"))

	require.NoError(t, qc.Invalidate(ctx, "team.assign_manager"))

	require.False(t, mr.Exists("team:members:7"))
	require.True(t, mr.Exists(shared.TeamLockKey(7)), "held lock must survive cache invalidation")
}

func TestInvalidateUnknownMutationNoop(t *testing.T) {
	qc, mr := newTestCache(t)
	ctx := context.Background()
	var out int
	require.NoError(t, qc.FetchJSON(ctx, "team:members:1", &out, func(context.Context) (interface{}, error) { return 1, nil }))
	require.NoError(t, qc.Invalidate(ctx, "nobody.heard_of_this"))
	require.True(t, mr.Exists("team:members:1"))
}
