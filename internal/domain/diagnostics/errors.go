package diagnostics

import "errors"

var (
	ErrTestNotFound    = errors.New("Test not found")
	ErrResultNotFound  = errors.New("Test result not found")
	ErrPatientNotFound = errors.New("Patient not found")
	ErrDuplicateTest   = errors.New("Test with this name, category, and subcategory already exists")
)

// ValidationError is a client error whose message is safe to return as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

func missingField(name string) error { return invalid("Missing required field: " + name) }
