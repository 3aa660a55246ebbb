package diagnostics

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labassist/labassist/internal/platform/db"
	"github.com/labassist/labassist/pkg/pagination"
)

// -- Test Catalog --

type catalogRepoPG struct{ pool *pgxpool.Pool }

func NewCatalogRepo(pool *pgxpool.Pool) CatalogRepository { return &catalogRepoPG{pool: pool} }

func (r *catalogRepoPG) conn(ctx context.Context) db.Querier { return db.Conn(ctx, r.pool) }

const catalogCols = `id, name, category, subcategory, reference_range, unit, price, created_at`

func scanDefinition(row pgx.Row) (*TestDefinition, error) {
	var d TestDefinition
	err := row.Scan(&d.ID, &d.Name, &d.Category, &d.Subcategory, &d.ReferenceRange, &d.Unit, &d.Price, &d.CreatedAt)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &d, nil
}

func (r *catalogRepoPG) Create(ctx context.Context, d *TestDefinition) error {
	d.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO test_catalog (id, name, category, subcategory, reference_range, unit, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		d.ID, d.Name, d.Category, d.Subcategory, d.ReferenceRange, d.Unit, d.Price,
	).Scan(&d.CreatedAt)
}

func (r *catalogRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*TestDefinition, error) {
	return scanDefinition(r.conn(ctx).QueryRow(ctx, `SELECT `+catalogCols+` FROM test_catalog WHERE id = $1`, id))
}

func (r *catalogRepoPG) Update(ctx context.Context, d *TestDefinition) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE test_catalog SET name = $2, category = $3, subcategory = $4,
			reference_range = $5, unit = $6, price = $7
		WHERE id = $1`,
		d.ID, d.Name, d.Category, d.Subcategory, d.ReferenceRange, d.Unit, d.Price,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *catalogRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM test_catalog WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *catalogRepoPG) List(ctx context.Context, limit, offset int) ([]*TestDefinition, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM test_catalog`).Scan(&total); err != nil {
		return nil, 0, err
	}
	page := pagination.Params{Limit: limit, Offset: offset}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+catalogCols+` FROM test_catalog ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		page.LimitArg(), page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var defs []*TestDefinition
	for rows.Next() {
		d, err := scanDefinition(rows)
		if err != nil {
			return nil, 0, err
		}
		defs = append(defs, d)
	}
	return defs, total, rows.Err()
}

// -- Test Results --

type resultRepoPG struct{ pool *pgxpool.Pool }

func NewResultRepo(pool *pgxpool.Pool) ResultRepository { return &resultRepoPG{pool: pool} }

const resultCols = `id, patient_id, test_category, test_subcategory, test_name, test_value,
	normal_range, unit, test_date, additional_note, created_at`

func scanResult(row pgx.Row) (*TestResult, error) {
	var t TestResult
	err := row.Scan(&t.ID, &t.PatientID, &t.TestCategory, &t.TestSubcategory, &t.TestName, &t.TestValue,
		&t.NormalRange, &t.Unit, &t.TestDate, &t.AdditionalNote, &t.CreatedAt)
	if err != nil {
		return nil, db.NotFound(err)
	}
	return &t, nil
}

func (r *resultRepoPG) CreateBatch(ctx context.Context, results []*TestResult) error {
	return db.InTx(ctx, r.pool, func(ctx context.Context) error {
		q := db.Conn(ctx, r.pool)
		for _, t := range results {
			t.ID = uuid.New()
			err := q.QueryRow(ctx, `
				INSERT INTO test_results (id, patient_id, test_category, test_subcategory, test_name,
					test_value, normal_range, unit, test_date, additional_note)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				RETURNING created_at`,
				t.ID, t.PatientID, t.TestCategory, t.TestSubcategory, t.TestName,
				t.TestValue, t.NormalRange, t.Unit, t.TestDate, t.AdditionalNote,
			).Scan(&t.CreatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *resultRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM test_results WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *resultRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, window *DateWindow) ([]*TestResult, error) {
	query := `SELECT ` + resultCols + ` FROM test_results WHERE patient_id = $1`
	args := []interface{}{patientID}
	if window != nil {
		query += ` AND test_date::date BETWEEN $2::date AND $3::date`
		args = append(args, window.From.Format("2006-01-02"), window.To.Format("2006-01-02"))
	}
	query += ` ORDER BY test_category, test_subcategory, test_date DESC`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*TestResult
	for rows.Next() {
		t, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// -- Report Log --

type reportLogRepoPG struct{ pool *pgxpool.Pool }

func NewReportLogRepo(pool *pgxpool.Pool) ReportLogRepository { return &reportLogRepoPG{pool: pool} }

func (r *reportLogRepoPG) Create(ctx context.Context, l *ReportLog) error {
	l.ID = uuid.New()
	return db.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO reports (id, patient_id) VALUES ($1, $2) RETURNING generated_at`,
		l.ID, l.PatientID,
	).Scan(&l.GeneratedAt)
}

func (r *reportLogRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM reports`).Scan(&n)
	return n, err
}

func (r *reportLogRepoPG) Recent(ctx context.Context, limit int) ([]*RecentReport, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT r.id, r.patient_id, r.generated_at, p.full_name
		FROM reports r
		JOIN patients p ON p.id = r.patient_id
		ORDER BY r.generated_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*RecentReport
	for rows.Next() {
		var rr RecentReport
		if err := rows.Scan(&rr.ID, &rr.PatientID, &rr.GeneratedAt, &rr.PatientName); err != nil {
			return nil, err
		}
		out = append(out, &rr)
	}
	return out, rows.Err()
}
