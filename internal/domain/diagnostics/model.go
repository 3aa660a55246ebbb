package diagnostics

import (
	"time"

	"github.com/google/uuid"
)

// TestDefinition is a catalog entry describing an orderable test.
type TestDefinition struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Subcategory    string    `json:"subcategory"`
	ReferenceRange *string   `json:"referenceRange"`
	Unit           *string   `json:"unit"`
	Price          *float64  `json:"price"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CatalogTest is a test as listed inside a CategoryGroup.
type CatalogTest struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ReferenceRange *string   `json:"referenceRange"`
	Unit           *string   `json:"unit"`
	Price          *float64  `json:"price"`
}

type SubcategoryGroup struct {
	Subcategory string        `json:"subcategory"`
	Tests       []CatalogTest `json:"tests"`
}

type CategoryGroup struct {
	Category      string             `json:"category"`
	Subcategories []SubcategoryGroup `json:"subcategories"`
}

// TestResult is one measured value for a patient.
type TestResult struct {
	ID              uuid.UUID `json:"id"`
	PatientID       uuid.UUID `json:"patientId"`
	TestCategory    string    `json:"testCategory"`
	TestSubcategory string    `json:"testSubcategory"`
	TestName        string    `json:"testName"`
	TestValue       string    `json:"testValue"`
	NormalRange     *string   `json:"normalRange"`
	Unit            *string   `json:"unit"`
	TestDate        time.Time `json:"testDate"`
	AdditionalNote  *string   `json:"additionalNote"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Status classifies the result against its own normal range.
func (r *TestResult) Status() Status {
	return ClassifyRange(r.TestValue, r.NormalRange)
}

// ResultEntry is a single measurement inside a RecordRequest.
type ResultEntry struct {
	TestName    string  `json:"testName"`
	Value       string  `json:"value"`
	NormalRange *string `json:"normalRange"`
	Unit        *string `json:"unit"`
}

// RecordRequest records several results of one category for a patient.
type RecordRequest struct {
	PatientID   string        `json:"patientId"`
	Category    string        `json:"category"`
	Subcategory string        `json:"subcategory"`
	Tests       []ResultEntry `json:"tests"`
	TestDate    string        `json:"testDate"`
	Notes       *string       `json:"notes"`
}

// DateWindow restricts results to test dates between From and To inclusive,
// compared on the calendar date only.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// PatientHeader is the patient block printed at the top of a report.
type PatientHeader struct {
	FullName      string  `json:"patientName"`
	PatientCode   string  `json:"patientCode"`
	Age           int     `json:"patientAge"`
	Gender        string  `json:"patientGender"`
	ContactNumber string  `json:"contactNumber"`
	RefBy         *string `json:"refBy"`
}

// ReportTimeLayout is how test dates are rendered in a report.
const ReportTimeLayout = "2006-01-02 15:04:05"

type ReportLine struct {
	ID              uuid.UUID `json:"id"`
	TestCategory    string    `json:"testCategory"`
	TestSubcategory string    `json:"testSubcategory"`
	TestName        string    `json:"testName"`
	TestValue       string    `json:"testValue"`
	NormalRange     *string   `json:"normalRange"`
	Unit            *string   `json:"unit"`
	AdditionalNote  *string   `json:"additionalNote"`
	TestDate        string    `json:"testDate"`
	Status          Status    `json:"status"`
}

// Report is a patient's results, each classified against its normal range.
type Report struct {
	PatientHeader
	Tests []ReportLine `json:"tests"`
}

// ReportLog records that a report was generated for a patient.
type ReportLog struct {
	ID          uuid.UUID `json:"id"`
	PatientID   uuid.UUID `json:"patientId"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type RecentReport struct {
	ReportLog
	PatientName string `json:"patientName"`
}
