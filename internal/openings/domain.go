// Package openings manages tenant job postings.
package openings

import "time"

// Status is the lifecycle state of a posting.
type Status string

const (
	StatusOpen   Status = "open"
	StatusPaused Status = "paused"
	StatusClosed Status = "closed"
)

// Valid reports whether the status is a known state.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusPaused, StatusClosed:
		return true
	}
	return false
}

// Opening is a job posting a tenant is hiring for.
type Opening struct {
	ID             int64     `json:"id"`
	TenantID       int64     `json:"tenant_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Department     string    `json:"department,omitempty"`
	Location       string    `json:"location,omitempty"`
	EmploymentType string    `json:"employment_type"`
	Skills         []string  `json:"skills"`
	Status         Status    `json:"status"`
	CreatedBy      int64     `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
