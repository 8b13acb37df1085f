// Package candidates manages the tenant candidate pool: profile data,
// recruiter assignment, and onboarding progression.
package candidates

import "time"

// OnboardingStatus tracks a candidate through intake.
type OnboardingStatus string

// Onboarding states, in order.
const (
	StatusPending    OnboardingStatus = "pending"
	StatusInProgress OnboardingStatus = "in_progress"
	StatusCompleted  OnboardingStatus = "completed"
)

var onboardingTransitions = map[OnboardingStatus][]OnboardingStatus{
	StatusPending:    {StatusInProgress},
	StatusInProgress: {StatusCompleted, StatusPending},
	StatusCompleted:  {},
}

// CanTransitionTo reports whether moving to next is a legal step.
func (s OnboardingStatus) CanTransitionTo(next OnboardingStatus) bool {
	for _, allowed := range onboardingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether the status is a known state.
func (s OnboardingStatus) Valid() bool {
	_, ok := onboardingTransitions[s]
	return ok
}

// Candidate is a person in a tenant's recruiting pipeline.
type Candidate struct {
	ID                int64            `json:"id"`
	TenantID          int64            `json:"tenant_id"`
	FirstName         string           `json:"first_name"`
	LastName          string           `json:"last_name"`
	Email             string           `json:"email"`
	Phone             string           `json:"phone,omitempty"`
	Skills            []string         `json:"skills"`
	OnboardingStatus  OnboardingStatus `json:"onboarding_status"`
	CurrentAssignment *string          `json:"current_assignment,omitempty"`
	RecruiterID       *int64           `json:"recruiter_id,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
