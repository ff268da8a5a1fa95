package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role tags the partition an identity lives in. Email uniqueness and
// credential lookups are scoped to a single partition.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
	RoleStudent Role = "student"
)

// ParseRole validates a client-supplied role string.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleFaculty, RoleStudent:
		return Role(s), true
	}
	return "", false
}

// Identity is the shared core of an admin, faculty or student record.
// Role-specific extension data (faculty specialization, student enrolments)
// ride along as nullable fields rather than separate types.
type Identity struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-"` // never exposed
	Role         Role       `json:"role"`
	AvatarPath   *string    `json:"avatar_path,omitempty"`

	// Present only between a reset request and its consumption.
	ResetToken       *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	// Faculty only.
	Specialization *string `json:"specialization,omitempty"`
	// Student only.
	EnrolledTests []uuid.UUID `json:"enrolled_tests,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Claims is the JWT claim set minted on login. The token is self-contained:
// validity is entirely signature + expiry, there is no session table.
type Claims struct {
	IdentityID string `json:"uid"`
	Role       string `json:"rol"`
	jwt.RegisteredClaims
}

// UpdateIdentityParams carries the mutable profile fields. Pointers
// distinguish "not provided" from an explicit empty value.
type UpdateIdentityParams struct {
	Name           *string `json:"name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
}
