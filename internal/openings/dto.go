package openings

// Input is the payload for creating or editing a posting.
type Input struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Description    string   `json:"description" validate:"required"`
	Department     string   `json:"department" validate:"omitempty,max=120"`
	Location       string   `json:"location" validate:"omitempty,max=160"`
	EmploymentType string   `json:"employment_type" validate:"required,oneof=full_time part_time contract internship"`
	Skills         []string `json:"skills" validate:"omitempty,dive,min=1,max=64"`
}

// ListFilter narrows posting listings.
type ListFilter struct {
	Search     string
	Status     Status
	Department string
	Limit      int
	Offset     int
}
