package admin

import "errors"

var (
	ErrLabNotFound  = errors.New("Lab info not found")
	ErrUserNotFound = errors.New("User profile not found")
	ErrEmailInUse   = errors.New("Email already in use")

	// Authentication failures, reported as 401.
	ErrUnknownEmail    = errors.New("Invalid email address")
	ErrInvalidPassword = errors.New("Invalid password")
	ErrWrongPassword   = errors.New("Current password is incorrect")
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }
