// Package team implements the reporting hierarchy: who manages whom,
// which candidates each member carries, and the composed "team view" the
// portal renders for managers and recruiters.
package team

import "time"

// MemberWithCounts is one direct report with aggregate counts, as served
// to the drill-down roster.
type MemberWithCounts struct {
	ID              int64  `json:"id"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	RoleName        string `json:"role_name"`
	CandidateCount  int    `json:"candidate_count"`
	TeamMemberCount int    `json:"team_member_count"`
	HasTeamMembers  bool   `json:"has_team_members"`
}

// CandidateInfo is the candidate projection used by team views.
type CandidateInfo struct {
	ID                int64   `json:"id"`
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	OnboardingStatus  string  `json:"onboarding_status"`
	CurrentAssignment *string `json:"current_assignment,omitempty"`
}

// Assignment records a manager change for auditing responses.
type Assignment struct {
	MemberID  int64     `json:"member_id"`
	ManagerID *int64    `json:"manager_id"`
	ChangedAt time.Time `json:"changed_at"`
}
