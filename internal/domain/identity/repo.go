package identity

import (
	"context"

	"github.com/google/uuid"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	// Update writes every field except the patient code.
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns patients newest first. limit 0 means all rows.
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	// LatestCode returns the code of the most recently created patient, or
	// "" when there are none.
	LatestCode(ctx context.Context) (string, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *ReferringDoctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*ReferringDoctor, error)
	Update(ctx context.Context, d *ReferringDoctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns doctors ordered by name.
	List(ctx context.Context) ([]*ReferringDoctor, error)
}
