package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/peopleflow/peopleflow/internal/observability"
	"github.com/peopleflow/peopleflow/internal/team"
)

// TeamWarmupJob pre-populates team roster caches for every manager with
// direct reports, so dashboards load from Redis during business hours.
type TeamWarmupJob struct {
	Team    *team.Service
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

type warmupScope struct {
	TenantID  int64
	ManagerID int64
}

// NewTeamWarmupJob wires dependencies for the warmup handler.
func NewTeamWarmupJob(svc *team.Service, pool *pgxpool.Pool, logger *slog.Logger, metrics *observability.Metrics) *TeamWarmupJob {
	return &TeamWarmupJob{Team: svc, Pool: pool, Logger: logger, Metrics: metrics}
}

// Handle processes TaskTeamWarmup tasks.
func (j *TeamWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Team == nil {
		return errors.New("team warmup: handler not configured")
	}
	var payload TeamWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := time.Now()
	scopes, err := j.fetchScopes(ctx, payload.TenantID)
	if err != nil {
		j.observe("failure")
		j.logger().Error("load warmup scopes", slog.Any("error", err))
		return err
	}
	if len(scopes) == 0 {
		j.observe("success")
		j.logger().Info("no managers discovered for warmup")
		return nil
	}

	for _, scope := range scopes {
		scopeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_, err := j.Team.TeamMembers(scopeCtx, scope.TenantID, scope.ManagerID)
		cancel()
		if err != nil {
			j.observe("failure")
			j.logger().Error("warm roster",
				slog.Int64("tenant_id", scope.TenantID),
				slog.Int64("manager_id", scope.ManagerID),
				slog.Any("error", err))
			return err
		}
	}

	j.observe("success")
	j.logger().Info("completed team warmup",
		slog.Int("scopes", len(scopes)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *TeamWarmupJob) fetchScopes(ctx context.Context, tenantID int64) ([]warmupScope, error) {
	if j.Pool == nil {
		return nil, nil
	}
	query := `
		SELECT DISTINCT u.tenant_id, u.manager_id
		FROM users u
		JOIN tenants t ON t.id = u.tenant_id
		WHERE u.manager_id IS NOT NULL AND u.is_active AND t.status = 'active'`
	args := []any{}
	if tenantID > 0 {
		query += ` AND u.tenant_id = $1`
		args = append(args, tenantID)
	}
	query += ` ORDER BY u.tenant_id, u.manager_id`

	rows, err := j.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var scopes []warmupScope
	for rows.Next() {
		var s warmupScope
		if err := rows.Scan(&s.TenantID, &s.ManagerID); err != nil {
			return nil, err
		}
		scopes = append(scopes, s)
	}
	return scopes, rows.Err()
}

func (j *TeamWarmupJob) observe(outcome string) {
	if j.Metrics != nil {
		j.Metrics.ObserveJob(TaskTeamWarmup, outcome)
	}
}

func (j *TeamWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
