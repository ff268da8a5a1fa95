package faculty

// CreateFacultyRequest is the faculty onboarding body.
type CreateFacultyRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Password       string `json:"password"`
	Specialization string `json:"specialization"`
}

// UpdateProfileRequest carries the mutable faculty profile fields.
type UpdateProfileRequest struct {
	Name           *string `json:"name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
}
