// Package submissions tracks candidates moving through a posting's
// hiring pipeline.
package submissions

import "time"

// Status is a submission's pipeline stage.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusReview    Status = "review"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
	StatusHired     Status = "hired"
)

// Rejection is allowed from any live stage; every other move steps
// forward one stage at a time.
var pipelineTransitions = map[Status][]Status{
	StatusSubmitted: {StatusReview, StatusRejected},
	StatusReview:    {StatusInterview, StatusRejected},
	StatusInterview: {StatusOffer, StatusRejected},
	StatusOffer:     {StatusHired, StatusRejected},
	StatusRejected:  {},
	StatusHired:     {},
}

// CanTransitionTo reports whether moving to next is a legal step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range pipelineTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether the status is a known stage.
func (s Status) Valid() bool {
	_, ok := pipelineTransitions[s]
	return ok
}

// Terminal reports whether no further moves are possible.
func (s Status) Terminal() bool {
	return len(pipelineTransitions[s]) == 0
}

// Submission links a candidate to an opening.
type Submission struct {
	ID          int64     `json:"id"`
	TenantID    int64     `json:"tenant_id"`
	OpeningID   int64     `json:"opening_id"`
	CandidateID int64     `json:"candidate_id"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	SubmittedBy int64     `json:"submitted_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Notification carries the addressing details for a status change mail:
// the submitting recruiter plus display context for the message body.
type Notification struct {
	SubmitterEmail string
	CandidateName  string
	OpeningTitle   string
}

// StatusChange is one entry in a submission's history trail.
type StatusChange struct {
	ID           int64     `json:"id"`
	SubmissionID int64     `json:"submission_id"`
	FromStatus   Status    `json:"from_status"`
	ToStatus     Status    `json:"to_status"`
	ChangedBy    int64     `json:"changed_by"`
	Note         string    `json:"note,omitempty"`
	ChangedAt    time.Time `json:"changed_at"`
}
