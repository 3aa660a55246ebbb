package identity

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID            uuid.UUID `json:"id"`
	FullName      string    `json:"fullName"`
	Age           int       `json:"age"`
	Gender        string    `json:"gender"`
	ContactNumber string    `json:"contactNumber"`
	Email         string    `json:"email"`
	PatientCode   string    `json:"patientCode"`
	Address       string    `json:"address"`
	RefBy         *string   `json:"refBy"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PatientInput is the create/update request body. Age is a pointer so a
// missing age can be told apart from zero.
type PatientInput struct {
	FullName      string  `json:"fullName"`
	Age           *int    `json:"age"`
	Gender        string  `json:"gender"`
	ContactNumber string  `json:"contactNumber"`
	Email         string  `json:"email"`
	PatientCode   string  `json:"patientCode"`
	Address       string  `json:"address"`
	RefBy         *string `json:"refBy"`
}

type ReferringDoctor struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Specialization *string   `json:"specialization"`
	CreatedAt      time.Time `json:"createdAt"`
}
