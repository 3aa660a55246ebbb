package identity

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/labassist/labassist/internal/platform/db"
)

// -- Mock Patient Repository --

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
	seq      int
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	for _, other := range m.patients {
		if other.PatientCode == p.PatientCode {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	m.seq++
	p.ID = uuid.New()
	p.CreatedAt = time.Unix(int64(m.seq), 0)
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	existing, ok := m.patients[p.ID]
	if !ok {
		return db.ErrNotFound
	}
	cp := *p
	cp.PatientCode = existing.PatientCode
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) sorted() []*Patient {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	result := m.sorted()
	total := len(result)
	if offset < len(result) {
		result = result[offset:]
	} else {
		result = nil
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, total, nil
}

func (m *mockPatientRepo) LatestCode(_ context.Context) (string, error) {
	all := m.sorted()
	if len(all) == 0 {
		return "", nil
	}
	return all[0].PatientCode, nil
}

// -- Mock Doctor Repository --

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*ReferringDoctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*ReferringDoctor)}
}

func (m *mockDoctorRepo) nameTaken(d *ReferringDoctor) bool {
	for _, other := range m.doctors {
		if other.ID != d.ID && other.Name == d.Name {
			return true
		}
	}
	return false
}

func (m *mockDoctorRepo) Create(_ context.Context, d *ReferringDoctor) error {
	if m.nameTaken(d) {
		return &pgconn.PgError{Code: "23505"}
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*ReferringDoctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return d, nil
}

func (m *mockDoctorRepo) Update(_ context.Context, d *ReferringDoctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return db.ErrNotFound
	}
	if m.nameTaken(d) {
		return &pgconn.PgError{Code: "23505"}
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.doctors[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.doctors, id)
	return nil
}

func (m *mockDoctorRepo) List(_ context.Context) ([]*ReferringDoctor, error) {
	var result []*ReferringDoctor
	for _, d := range m.doctors {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func newTestService() *Service {
	return NewService(newMockPatientRepo(), newMockDoctorRepo())
}

func intPtr(i int) *int { return &i }

func validInput(code string) *PatientInput {
	return &PatientInput{
		FullName:      "Asha Rao",
		Age:           intPtr(34),
		Gender:        "Female",
		ContactNumber: "555-0100",
		Email:         "asha@example.com",
		PatientCode:   code,
		Address:       "12 Lake Road",
	}
}

// -- Patient Tests --

func TestService_CreatePatient(t *testing.T) {
	svc := newTestService()
	p, err := svc.CreatePatient(context.Background(), validInput("PAT000001"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil || p.PatientCode != "PAT000001" || p.Age != 34 {
		t.Errorf("unexpected patient: %+v", p)
	}
}

func TestService_CreatePatient_MissingFields(t *testing.T) {
	svc := newTestService()
	tests := []struct {
		field  string
		mutate func(in *PatientInput)
	}{
		{"fullName", func(in *PatientInput) { in.FullName = " " }},
		{"age", func(in *PatientInput) { in.Age = nil }},
		{"gender", func(in *PatientInput) { in.Gender = "" }},
		{"contactNumber", func(in *PatientInput) { in.ContactNumber = "" }},
		{"email", func(in *PatientInput) { in.Email = "" }},
		{"patientCode", func(in *PatientInput) { in.PatientCode = "" }},
		{"address", func(in *PatientInput) { in.Address = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			in := validInput("PAT000001")
			tt.mutate(in)
			_, err := svc.CreatePatient(context.Background(), in)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Message != "Missing required field: "+tt.field {
				t.Errorf("expected missing %s, got %v", tt.field, err)
			}
		})
	}
}

func TestService_CreatePatient_AgeZeroAllowed(t *testing.T) {
	svc := newTestService()
	in := validInput("PAT000001")
	in.Age = intPtr(0)
	if _, err := svc.CreatePatient(context.Background(), in); err != nil {
		t.Errorf("expected newborn to be accepted, got %v", err)
	}
	in = validInput("PAT000002")
	in.Age = intPtr(-1)
	if _, err := svc.CreatePatient(context.Background(), in); err == nil {
		t.Error("expected error for negative age")
	}
}

func TestService_CreatePatient_DuplicateCode(t *testing.T) {
	svc := newTestService()
	svc.CreatePatient(context.Background(), validInput("PAT000001"))
	_, err := svc.CreatePatient(context.Background(), validInput("PAT000001"))
	if !errors.Is(err, ErrDuplicatePatient) {
		t.Errorf("expected ErrDuplicatePatient, got %v", err)
	}
}

func TestService_UpdatePatient_KeepsCode(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p, _ := svc.CreatePatient(ctx, validInput("PAT000001"))

	in := validInput("PAT999999")
	in.FullName = "Asha R. Rao"
	updated, err := svc.UpdatePatient(ctx, p.ID, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.FullName != "Asha R. Rao" {
		t.Errorf("expected name to change, got %s", updated.FullName)
	}
	got, _ := svc.GetPatient(ctx, p.ID)
	if got.PatientCode != "PAT000001" {
		t.Errorf("expected patient code to be kept, got %s", got.PatientCode)
	}
}

func TestService_UpdatePatient_NotFound(t *testing.T) {
	svc := newTestService()
	_, err := svc.UpdatePatient(context.Background(), uuid.New(), validInput("PAT000001"))
	if !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestService_DeletePatient(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p, _ := svc.CreatePatient(ctx, validInput("PAT000001"))
	if err := svc.DeletePatient(ctx, p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeletePatient(ctx, p.ID); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestService_NextPatientCode(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	code, err := svc.NextPatientCode(ctx)
	if err != nil || code != "PAT000001" {
		t.Fatalf("expected PAT000001, got %s (%v)", code, err)
	}
	svc.CreatePatient(ctx, validInput("PAT000001"))
	svc.CreatePatient(ctx, validInput("PAT000002"))
	code, _ = svc.NextPatientCode(ctx)
	if code != "PAT000003" {
		t.Errorf("expected PAT000003, got %s", code)
	}
}

func TestService_ListPatients(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.CreatePatient(ctx, validInput("PAT000001"))
	svc.CreatePatient(ctx, validInput("PAT000002"))
	svc.CreatePatient(ctx, validInput("PAT000003"))

	patients, total, err := svc.ListPatients(ctx, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 || len(patients) != 2 {
		t.Fatalf("expected 2 of 3, got %d of %d", len(patients), total)
	}
	if patients[0].PatientCode != "PAT000003" {
		t.Errorf("expected newest first, got %s", patients[0].PatientCode)
	}
}

// -- Referring Doctor Tests --

func TestService_Doctors(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if err := svc.CreateDoctor(ctx, &ReferringDoctor{Name: " "}); err == nil || err.Error() != "Missing required field: name" {
		t.Errorf("expected missing name, got %v", err)
	}

	b := &ReferringDoctor{Name: "Dr. Bose"}
	a := &ReferringDoctor{Name: "Dr. Anand"}
	if err := svc.CreateDoctor(ctx, b); err != nil {
		t.Fatal(err)
	}
	if err := svc.CreateDoctor(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := svc.CreateDoctor(ctx, &ReferringDoctor{Name: "Dr. Bose"}); !errors.Is(err, ErrDuplicateDoctor) {
		t.Errorf("expected ErrDuplicateDoctor, got %v", err)
	}

	doctors, _ := svc.ListDoctors(ctx)
	if len(doctors) != 2 || doctors[0].Name != "Dr. Anand" {
		t.Errorf("expected doctors ordered by name, got %+v", doctors)
	}

	if err := svc.UpdateDoctor(ctx, &ReferringDoctor{ID: b.ID, Name: "Dr. Anand"}); !errors.Is(err, ErrDuplicateDoctor) {
		t.Errorf("expected ErrDuplicateDoctor on rename, got %v", err)
	}
	if err := svc.UpdateDoctor(ctx, &ReferringDoctor{ID: uuid.New(), Name: "Dr. Who"}); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound, got %v", err)
	}
	if err := svc.DeleteDoctor(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetDoctor(ctx, a.ID); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound, got %v", err)
	}
}
