package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMatchingRefresh recomputes candidate match sets for open postings.
	TaskMatchingRefresh = "matching:refresh"
	// TaskTeamWarmup pre-populates team roster caches per tenant.
	TaskTeamWarmup = "team:warmup"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// MatchingRefreshPayload scopes a refresh run. TenantID zero means all
// active tenants.
type MatchingRefreshPayload struct {
	TenantID int64 `json:"tenant_id"`
}

// NewMatchingRefreshTask constructs a matching refresh task.
func NewMatchingRefreshTask(tenantID int64) (*asynq.Task, error) {
	data, err := json.Marshal(MatchingRefreshPayload{TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMatchingRefresh, data), nil
}

// TeamWarmupPayload scopes a warmup run. TenantID zero means all active
// tenants.
type TeamWarmupPayload struct {
	TenantID int64 `json:"tenant_id"`
}

// NewTeamWarmupTask constructs a team warmup task.
func NewTeamWarmupTask(tenantID int64) (*asynq.Task, error) {
	data, err := json.Marshal(TeamWarmupPayload{TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTeamWarmup, data), nil
}

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs a send-email task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}
