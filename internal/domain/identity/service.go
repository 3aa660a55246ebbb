package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/labassist/labassist/internal/platform/db"
)

type Service struct {
	patients PatientRepository
	doctors  DoctorRepository
}

func NewService(patients PatientRepository, doctors DoctorRepository) *Service {
	return &Service{patients: patients, doctors: doctors}
}

// -- Patients --

func (in *PatientInput) validate() error {
	in.FullName = strings.TrimSpace(in.FullName)
	in.PatientCode = strings.TrimSpace(in.PatientCode)
	required := []struct {
		name  string
		empty bool
	}{
		{"fullName", in.FullName == ""},
		{"age", in.Age == nil},
		{"gender", strings.TrimSpace(in.Gender) == ""},
		{"contactNumber", strings.TrimSpace(in.ContactNumber) == ""},
		{"email", strings.TrimSpace(in.Email) == ""},
		{"patientCode", in.PatientCode == ""},
		{"address", strings.TrimSpace(in.Address) == ""},
	}
	for _, f := range required {
		if f.empty {
			return missingField(f.name)
		}
	}
	if *in.Age < 0 {
		return invalid("age must not be negative")
	}
	return nil
}

func (in *PatientInput) apply(p *Patient) {
	p.FullName = in.FullName
	p.Age = *in.Age
	p.Gender = in.Gender
	p.ContactNumber = in.ContactNumber
	p.Email = in.Email
	p.Address = in.Address
	p.RefBy = in.RefBy
}

func patientError(err error) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return ErrPatientNotFound
	case db.IsUniqueViolation(err):
		return ErrDuplicatePatient
	}
	return err
}

func (s *Service) CreatePatient(ctx context.Context, in *PatientInput) (*Patient, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &Patient{PatientCode: in.PatientCode}
	in.apply(p)
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, patientError(err)
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, patientError(err)
	}
	return p, nil
}

// UpdatePatient replaces the patient's details. The patient code is
// required in the body but never changed.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, in *PatientInput) (*Patient, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, patientError(err)
	}
	in.apply(p)
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, patientError(err)
	}
	return p, nil
}

// DeletePatient removes the patient together with their results and report log.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return patientError(s.patients.Delete(ctx, id))
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// NextPatientCode suggests the code for the next patient to be registered.
func (s *Service) NextPatientCode(ctx context.Context) (string, error) {
	latest, err := s.patients.LatestCode(ctx)
	if err != nil {
		return "", err
	}
	return NextPatientCode(latest), nil
}

// -- Referring Doctors --

func validateDoctor(d *ReferringDoctor) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return missingField("name")
	}
	return nil
}

func doctorError(err error) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return ErrDoctorNotFound
	case db.IsUniqueViolation(err):
		return ErrDuplicateDoctor
	}
	return err
}

func (s *Service) CreateDoctor(ctx context.Context, d *ReferringDoctor) error {
	if err := validateDoctor(d); err != nil {
		return err
	}
	return doctorError(s.doctors.Create(ctx, d))
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*ReferringDoctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, doctorError(err)
	}
	return d, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, d *ReferringDoctor) error {
	if err := validateDoctor(d); err != nil {
		return err
	}
	return doctorError(s.doctors.Update(ctx, d))
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return doctorError(s.doctors.Delete(ctx, id))
}

func (s *Service) ListDoctors(ctx context.Context) ([]*ReferringDoctor, error) {
	return s.doctors.List(ctx)
}
