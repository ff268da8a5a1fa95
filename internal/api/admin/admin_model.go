package admin

// CreateFirstAdminRequest bootstraps the very first admin account.
type CreateFirstAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// CreateAdminRequest creates an additional admin. The caller must prove they
// already hold an admin account by re-supplying its credentials.
type CreateAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`

	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

// UpdateProfileRequest carries the mutable admin profile fields.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}
