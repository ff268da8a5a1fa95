package types

import "errors"

// Sentinel errors shared by all feature packages. Handlers translate these
// to HTTP status codes with errors.Is; everything else becomes a 500.
var (
	ErrDuplicateEmail        = errors.New("email already registered for this role")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrUnauthenticated       = errors.New("authentication required or invalid token")
	ErrForbidden             = errors.New("action forbidden")
	ErrNotFound              = errors.New("requested item not found")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	ErrUpstreamUnavailable   = errors.New("upstream dependency unavailable")
)
