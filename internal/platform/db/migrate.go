package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"

	// Register pgx with database/sql for goose migrations.
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsDir = "migrations"

// Migrator applies the embedded SQL migrations with goose.
type Migrator struct {
	databaseURL string
}

func NewMigrator(databaseURL string) *Migrator {
	return &Migrator{databaseURL: databaseURL}
}

// Migrations lists the embedded migration files in version order.
func Migrations() ([]string, error) {
	entries, err := fs.ReadDir(embedMigrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Slice(names, func(i, j int) bool {
		return migrationVersion(names[i]) < migrationVersion(names[j])
	})
	return names, nil
}

func migrationVersion(name string) int64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return -1
	}
	return v
}

func (m *Migrator) open() (*sql.DB, error) {
	db, err := sql.Open("pgx", m.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database for migrations: %w", err)
	}
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set dialect: %w", err)
	}
	return db, nil
}

// Up applies all pending migrations. It reports whether the database was
// empty (version 0) before the run.
func (m *Migrator) Up(ctx context.Context) (fresh bool, err error) {
	db, err := m.open()
	if err != nil {
		return false, err
	}
	defer db.Close()

	before, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return false, fmt.Errorf("get db version: %w", err)
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return false, fmt.Errorf("run migrations: %w", err)
	}
	return before == 0, nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	db, err := m.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("roll back migration: %w", err)
	}
	return nil
}

// Status prints the applied/pending state of every migration through the
// goose logger.
func (m *Migrator) Status(ctx context.Context) error {
	db, err := m.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.StatusContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	return nil
}

// Version returns the current schema version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	db, err := m.open()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return goose.GetDBVersionContext(ctx, db)
}
