// Package tenants manages the customer organisations provisioned on the
// platform and their usage statistics.
package tenants

import "time"

// Status is a tenant's provisioning state.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Tenant is one customer organisation.
type Tenant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	PlanID    int64     `json:"plan_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats is the usage summary the console shows per tenant.
type Stats struct {
	TenantID        int64 `json:"tenant_id"`
	UserCount       int   `json:"user_count"`
	CandidateCount  int   `json:"candidate_count"`
	OpeningCount    int   `json:"opening_count"`
	SubmissionCount int   `json:"submission_count"`
	HireCount       int   `json:"hire_count"`
}
