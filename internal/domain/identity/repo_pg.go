package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labassist/labassist/internal/platform/db"
	"github.com/labassist/labassist/pkg/pagination"
)

// -- Patient Repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientCols = `id, full_name, age, gender, contact_number, email, patient_code, address, ref_by, created_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FullName, &p.Age, &p.Gender, &p.ContactNumber, &p.Email,
		&p.PatientCode, &p.Address, &p.RefBy, &p.CreatedAt)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (id, full_name, age, gender, contact_number, email, patient_code, address, ref_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		p.ID, p.FullName, p.Age, p.Gender, p.ContactNumber, p.Email, p.PatientCode, p.Address, p.RefBy,
	).Scan(&p.CreatedAt)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET full_name = $2, age = $3, gender = $4, contact_number = $5,
			email = $6, address = $7, ref_by = $8
		WHERE id = $1`,
		p.ID, p.FullName, p.Age, p.Gender, p.ContactNumber, p.Email, p.Address, p.RefBy,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	page := pagination.Params{Limit: limit, Offset: offset}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		page.LimitArg(), page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func (r *patientRepoPG) LatestCode(ctx context.Context) (string, error) {
	var code string
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT patient_code FROM patients ORDER BY created_at DESC LIMIT 1`).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return code, err
}

// -- Referring Doctor Repository --

type doctorRepoPG struct {
	pool *pgxpool.Pool
}

func NewDoctorRepo(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

func (r *doctorRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const doctorCols = `id, name, specialization, created_at`

func scanDoctor(row pgx.Row) (*ReferringDoctor, error) {
	var d ReferringDoctor
	if err := row.Scan(&d.ID, &d.Name, &d.Specialization, &d.CreatedAt); err != nil {
		return nil, db.NotFound(err)
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *ReferringDoctor) error {
	d.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx,
		`INSERT INTO ref_doctors (id, name, specialization) VALUES ($1, $2, $3) RETURNING created_at`,
		d.ID, d.Name, d.Specialization,
	).Scan(&d.CreatedAt)
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ReferringDoctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM ref_doctors WHERE id = $1`, id))
}

func (r *doctorRepoPG) Update(ctx context.Context, d *ReferringDoctor) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE ref_doctors SET name = $2, specialization = $3 WHERE id = $1`,
		d.ID, d.Name, d.Specialization)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *doctorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM ref_doctors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *doctorRepoPG) List(ctx context.Context) ([]*ReferringDoctor, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+doctorCols+` FROM ref_doctors ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doctors []*ReferringDoctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}
