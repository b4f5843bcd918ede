package services

import "errors"

// Error variables shared across flows. Handlers match these with errors.Is
// and turn them into inline form messages or flash messages; anything else
// is an infrastructure failure and degrades to a generic response.
var (
	// Validation class
	ErrMissingFields    = errors.New("name, email and password are required")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrWeakPassword     = errors.New("password too weak")
	ErrPasswordMismatch = errors.New("new password and confirmation do not match")

	// Conflict
	ErrEmailTaken = errors.New("email already in use")

	// Auth. One message for both unknown email and wrong password so the
	// two cases are indistinguishable from outside.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Lookup miss
	ErrNotFound = errors.New("user not found")
)

// IsValidation reports whether err belongs to the validation class.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingFields) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrWeakPassword) ||
		errors.Is(err, ErrPasswordMismatch)
}
