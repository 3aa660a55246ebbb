package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labassist/labassist/internal/platform/db"
	"github.com/labassist/labassist/pkg/pagination"
)

func affectedOne(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// -- Lab Repository --

type labRepoPG struct {
	pool *pgxpool.Pool
}

func NewLabRepo(pool *pgxpool.Pool) LabRepository {
	return &labRepoPG{pool: pool}
}

func (r *labRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const labCols = `id, name, address, phone, email, created_at`

func scanLab(row pgx.Row) (*Lab, error) {
	var l Lab
	if err := row.Scan(&l.ID, &l.Name, &l.Address, &l.Phone, &l.Email, &l.CreatedAt); err != nil {
		return nil, db.NotFound(err)
	}
	return &l, nil
}

func (r *labRepoPG) Create(ctx context.Context, l *Lab) error {
	l.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO lab_info (id, name, address, phone, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		l.ID, l.Name, l.Address, l.Phone, l.Email,
	).Scan(&l.CreatedAt)
}

func (r *labRepoPG) Primary(ctx context.Context) (*Lab, error) {
	return scanLab(r.conn(ctx).QueryRow(ctx,
		`SELECT `+labCols+` FROM lab_info ORDER BY created_at ASC, id ASC LIMIT 1`))
}

func (r *labRepoPG) Update(ctx context.Context, l *Lab) error {
	return affectedOne(r.conn(ctx).Exec(ctx,
		`UPDATE lab_info SET name = $2, address = $3, phone = $4, email = $5 WHERE id = $1`,
		l.ID, l.Name, l.Address, l.Phone, l.Email))
}

func (r *labRepoPG) List(ctx context.Context, limit, offset int) ([]*Lab, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM lab_info`).Scan(&total); err != nil {
		return nil, 0, err
	}
	page := pagination.Params{Limit: limit, Offset: offset}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+labCols+` FROM lab_info ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		page.LimitArg(), page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var labs []*Lab
	for rows.Next() {
		l, err := scanLab(rows)
		if err != nil {
			return nil, 0, err
		}
		labs = append(labs, l)
	}
	return labs, total, rows.Err()
}

// -- User Repository --

type userRepoPG struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const userCols = `id, email, password, full_name, phone, role, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.CreatedAt); err != nil {
		return nil, db.NotFound(err)
	}
	return &u, nil
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (id, email, password, full_name, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.Phone, u.Role,
	).Scan(&u.CreatedAt)
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
}

func (r *userRepoPG) UpdateProfile(ctx context.Context, u *User) error {
	return affectedOne(r.conn(ctx).Exec(ctx,
		`UPDATE users SET full_name = $2, phone = $3, role = $4 WHERE id = $1`,
		u.ID, u.FullName, u.Phone, u.Role))
}

func (r *userRepoPG) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	return affectedOne(r.conn(ctx).Exec(ctx, `UPDATE users SET email = $2 WHERE id = $1`, id, email))
}

func (r *userRepoPG) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return affectedOne(r.conn(ctx).Exec(ctx, `UPDATE users SET password = $2 WHERE id = $1`, id, hash))
}

func (r *userRepoPG) UpdateCredentials(ctx context.Context, id uuid.UUID, email, hash string) error {
	return affectedOne(r.conn(ctx).Exec(ctx,
		`UPDATE users SET email = $2, password = $3 WHERE id = $1`, id, email, hash))
}

func (r *userRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
