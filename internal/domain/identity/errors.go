package identity

import "errors"

var (
	ErrPatientNotFound  = errors.New("Patient not found")
	ErrDuplicatePatient = errors.New("Patient code already exists")
	ErrDoctorNotFound   = errors.New("Reference doctor not found")
	ErrDuplicateDoctor  = errors.New("Reference doctor with this name already exists")
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

func missingField(name string) error { return invalid("Missing required field: " + name) }
