package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/capacitanet/internal/server/config"
	"github.com/dmitrijs2005/capacitanet/internal/server/migrations"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/records"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// sqlOpen is a seam for testing sql.Open.
var sqlOpen = sql.Open

// SQLRepositoryManager stores records in PostgreSQL (through pgx) or SQLite.
type SQLRepositoryManager struct {
	base
	db      *sql.DB
	dialect string
}

// NewSQLRepositoryManager opens cfg.DatabaseDSN with the driver matching
// cfg.RecordStoreDriver. Migrations are not run here; call RunMigrations.
func NewSQLRepositoryManager(cfg *config.Config) (*SQLRepositoryManager, error) {
	driver, dialect := "pgx", "pgx"
	if cfg.RecordStoreDriver == config.DriverSQLite {
		driver, dialect = "sqlite", "sqlite3"
	}

	db, err := sqlOpen(driver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}

	return &SQLRepositoryManager{
		base:    newBase(records.NewSQLRepository(db), cfg),
		db:      db,
		dialect: dialect,
	}, nil
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the store's database.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *SQLRepositoryManager) Close() error {
	return m.db.Close()
}
