package candidates

// CreateInput is the payload for registering a new candidate.
type CreateInput struct {
	FirstName string   `json:"first_name" validate:"required,max=120"`
	LastName  string   `json:"last_name" validate:"required,max=120"`
	Email     string   `json:"email" validate:"required,email"`
	Phone     string   `json:"phone" validate:"omitempty,max=32"`
	Skills    []string `json:"skills" validate:"omitempty,dive,min=1,max=64"`
}

// UpdateInput is the payload for editing an existing candidate.
type UpdateInput struct {
	FirstName string   `json:"first_name" validate:"required,max=120"`
	LastName  string   `json:"last_name" validate:"required,max=120"`
	Email     string   `json:"email" validate:"required,email"`
	Phone     string   `json:"phone" validate:"omitempty,max=32"`
	Skills    []string `json:"skills" validate:"omitempty,dive,min=1,max=64"`
}

// ListFilter narrows candidate listings.
type ListFilter struct {
	Search      string
	Status      OnboardingStatus
	RecruiterID *int64
	Limit       int
	Offset      int
}
