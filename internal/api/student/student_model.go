package student

// RegisterRequest is the self-service student signup body.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries the mutable student profile fields.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
