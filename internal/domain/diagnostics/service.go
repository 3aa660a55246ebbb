package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/labassist/labassist/internal/platform/db"
)

// DefaultRecentReports is how many report log entries RecentReports returns
// when no limit is given.
const DefaultRecentReports = 10

// Observer receives counters for recorded and classified results.
// *metrics.Metrics implements it.
type Observer interface {
	ObserveClassification(status string)
	ObserveResultsRecorded(n int)
	ObserveReportGenerated()
}

type nopObserver struct{}

func (nopObserver) ObserveClassification(string) {}
func (nopObserver) ObserveResultsRecorded(int)   {}
func (nopObserver) ObserveReportGenerated()      {}

type Service struct {
	catalog  CatalogRepository
	results  ResultRepository
	reports  ReportLogRepository
	patients PatientSource
	observer Observer
	now      func() time.Time
}

func NewService(catalog CatalogRepository, results ResultRepository, reports ReportLogRepository, patients PatientSource) *Service {
	return &Service{
		catalog:  catalog,
		results:  results,
		reports:  reports,
		patients: patients,
		observer: nopObserver{},
		now:      time.Now,
	}
}

// WithObserver sets the observer notified about results and reports.
func (s *Service) WithObserver(o Observer) *Service {
	if o != nil {
		s.observer = o
	}
	return s
}

// -- Test Catalog --

func validateDefinition(d *TestDefinition) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Category = strings.TrimSpace(d.Category)
	d.Subcategory = strings.TrimSpace(d.Subcategory)
	switch {
	case d.Name == "":
		return missingField("name")
	case d.Category == "":
		return missingField("category")
	case d.Subcategory == "":
		return missingField("subcategory")
	}
	if d.Price != nil && *d.Price < 0 {
		return invalid("price must not be negative")
	}
	return nil
}

func catalogError(err error) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return ErrTestNotFound
	case db.IsUniqueViolation(err):
		return ErrDuplicateTest
	}
	return err
}

func (s *Service) CreateTest(ctx context.Context, d *TestDefinition) error {
	if err := validateDefinition(d); err != nil {
		return err
	}
	if err := s.catalog.Create(ctx, d); err != nil {
		return catalogError(err)
	}
	return nil
}

func (s *Service) GetTest(ctx context.Context, id uuid.UUID) (*TestDefinition, error) {
	d, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return nil, catalogError(err)
	}
	return d, nil
}

func (s *Service) UpdateTest(ctx context.Context, d *TestDefinition) error {
	if err := validateDefinition(d); err != nil {
		return err
	}
	if err := s.catalog.Update(ctx, d); err != nil {
		return catalogError(err)
	}
	return nil
}

func (s *Service) DeleteTest(ctx context.Context, id uuid.UUID) error {
	return catalogError(s.catalog.Delete(ctx, id))
}

func (s *Service) ListTests(ctx context.Context, limit, offset int) ([]*TestDefinition, int, error) {
	return s.catalog.List(ctx, limit, offset)
}

// TestCategories returns the whole catalog grouped for the entry form.
func (s *Service) TestCategories(ctx context.Context) ([]CategoryGroup, error) {
	defs, _, err := s.catalog.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	return GroupCatalog(defs), nil
}

// -- Test Results --

func parsePatientID(raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, missingField("patientId")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalid("invalid patientId")
	}
	return id, nil
}

// RecordResults stores every entry of req in a single transaction.
func (s *Service) RecordResults(ctx context.Context, req *RecordRequest) ([]*TestResult, error) {
	patientID, err := parsePatientID(req.PatientID)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.TrimSpace(req.Category) == "":
		return nil, missingField("category")
	case strings.TrimSpace(req.Subcategory) == "":
		return nil, missingField("subcategory")
	case len(req.Tests) == 0:
		return nil, missingField("tests")
	}
	testDate, err := parseTestDate(req.TestDate, s.now())
	if err != nil {
		return nil, err
	}

	results := make([]*TestResult, 0, len(req.Tests))
	for i, e := range req.Tests {
		if strings.TrimSpace(e.TestName) == "" {
			return nil, invalid(fmt.Sprintf("Missing required field: tests[%d].testName", i))
		}
		results = append(results, &TestResult{
			PatientID:       patientID,
			TestCategory:    req.Category,
			TestSubcategory: req.Subcategory,
			TestName:        e.TestName,
			TestValue:       e.Value,
			NormalRange:     e.NormalRange,
			Unit:            e.Unit,
			TestDate:        testDate,
			AdditionalNote:  req.Notes,
		})
	}

	if err := s.results.CreateBatch(ctx, results); err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	s.observer.ObserveResultsRecorded(len(results))
	return results, nil
}

func (s *Service) ListResults(ctx context.Context, patientID uuid.UUID) ([]*TestResult, error) {
	return s.results.ListByPatient(ctx, patientID, nil)
}

func (s *Service) DeleteResult(ctx context.Context, id uuid.UUID) error {
	if err := s.results.Delete(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrResultNotFound
		}
		return err
	}
	return nil
}

// -- Reports --

// GenerateReport assembles the patient header and every result in window,
// classifying each result against its normal range. A nil window includes
// all results.
func (s *Service) GenerateReport(ctx context.Context, patientID uuid.UUID, window *DateWindow) (*Report, error) {
	header, err := s.patients.PatientHeader(ctx, patientID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	results, err := s.results.ListByPatient(ctx, patientID, window)
	if err != nil {
		return nil, err
	}

	report := &Report{PatientHeader: *header, Tests: make([]ReportLine, 0, len(results))}
	for _, r := range results {
		status := r.Status()
		s.observer.ObserveClassification(status.String())
		report.Tests = append(report.Tests, ReportLine{
			ID:              r.ID,
			TestCategory:    r.TestCategory,
			TestSubcategory: r.TestSubcategory,
			TestName:        r.TestName,
			TestValue:       r.TestValue,
			NormalRange:     r.NormalRange,
			Unit:            r.Unit,
			AdditionalNote:  r.AdditionalNote,
			TestDate:        r.TestDate.Format(ReportTimeLayout),
			Status:          status,
		})
	}
	return report, nil
}

// TrackReport logs that a report was printed or downloaded for a patient.
func (s *Service) TrackReport(ctx context.Context, rawPatientID string) (*ReportLog, error) {
	if strings.TrimSpace(rawPatientID) == "" {
		return nil, invalid("Patient ID is required")
	}
	patientID, err := uuid.Parse(rawPatientID)
	if err != nil {
		return nil, invalid("invalid patientId")
	}
	l := &ReportLog{PatientID: patientID}
	if err := s.reports.Create(ctx, l); err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	s.observer.ObserveReportGenerated()
	return l, nil
}

func (s *Service) CountReports(ctx context.Context) (int, error) {
	return s.reports.Count(ctx)
}

func (s *Service) RecentReports(ctx context.Context, limit int) ([]*RecentReport, error) {
	if limit <= 0 {
		limit = DefaultRecentReports
	}
	return s.reports.Recent(ctx, limit)
}
