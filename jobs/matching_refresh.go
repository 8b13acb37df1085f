package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peopleflow/peopleflow/internal/matching"
	"github.com/peopleflow/peopleflow/internal/observability"
)

// MatchingRefreshJob recomputes cached match sets for open postings, so the
// first viewer after a nightly run reads warm data.
type MatchingRefreshJob struct {
	Matching *matching.Service
	Pool     *pgxpool.Pool
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// NewMatchingRefreshJob wires dependencies for the refresh handler.
func NewMatchingRefreshJob(svc *matching.Service, pool *pgxpool.Pool, logger *slog.Logger, metrics *observability.Metrics) *MatchingRefreshJob {
	return &MatchingRefreshJob{Matching: svc, Pool: pool, Logger: logger, Metrics: metrics}
}

// Handle processes TaskMatchingRefresh tasks.
func (j *MatchingRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Matching == nil {
		return errors.New("matching refresh: handler not configured")
	}
	var payload MatchingRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := time.Now()
	tenantIDs := []int64{payload.TenantID}
	if payload.TenantID == 0 {
		ids, err := j.activeTenants(ctx)
		if err != nil {
			j.observe("failure")
			j.logger().Error("load active tenants", slog.Any("error", err))
			return err
		}
		tenantIDs = ids
	}

	postings := 0
	for _, tenantID := range tenantIDs {
		tenantCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		n, err := j.Matching.Refresh(tenantCtx, tenantID)
		cancel()
		if err != nil {
			j.observe("failure")
			j.logger().Error("refresh matches", slog.Int64("tenant_id", tenantID), slog.Any("error", err))
			return err
		}
		postings += n
	}

	j.observe("success")
	j.logger().Info("completed matching refresh",
		slog.Int("tenants", len(tenantIDs)),
		slog.Int("postings", postings),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *MatchingRefreshJob) activeTenants(ctx context.Context) ([]int64, error) {
	if j.Pool == nil {
		return nil, nil
	}
	rows, err := j.Pool.Query(ctx, `SELECT id FROM tenants WHERE status = 'active' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (j *MatchingRefreshJob) observe(outcome string) {
	if j.Metrics != nil {
		j.Metrics.ObserveJob(TaskMatchingRefresh, outcome)
	}
}

func (j *MatchingRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
