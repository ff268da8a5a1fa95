package auth

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response body. The token is a
// self-contained bearer credential; there is no server-side session.
type LoginResponse struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest carries the out-of-band token plus the partition it
// claims to belong to ("type" matches the reset link the mail contains).
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
	Type     string `json:"type"`
}

// Response is the generic success/error body for simple endpoints.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
