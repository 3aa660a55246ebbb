package diagnostics

import (
	"context"

	"github.com/google/uuid"
)

// Repositories return db.ErrNotFound for missing rows and pass Postgres
// errors through so the service can map constraint violations.

type CatalogRepository interface {
	Create(ctx context.Context, d *TestDefinition) error
	GetByID(ctx context.Context, id uuid.UUID) (*TestDefinition, error)
	Update(ctx context.Context, d *TestDefinition) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns definitions newest first. limit 0 means all rows.
	List(ctx context.Context, limit, offset int) ([]*TestDefinition, int, error)
}

type ResultRepository interface {
	// CreateBatch inserts all results atomically.
	CreateBatch(ctx context.Context, results []*TestResult) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByPatient orders by category, subcategory, then test date newest first.
	ListByPatient(ctx context.Context, patientID uuid.UUID, window *DateWindow) ([]*TestResult, error)
}

type ReportLogRepository interface {
	Create(ctx context.Context, l *ReportLog) error
	Count(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]*RecentReport, error)
}

// PatientSource resolves the report header for a patient. It returns
// db.ErrNotFound when the patient does not exist.
type PatientSource interface {
	PatientHeader(ctx context.Context, id uuid.UUID) (*PatientHeader, error)
}
