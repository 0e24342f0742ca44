package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/capacitanet/internal/common"
)

// DBTX is the subset of database/sql used by SQLRepository.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLRepository keeps every table in the single "records" relation created
// by the migrations package. The statements run unchanged on PostgreSQL (pgx)
// and SQLite.
type SQLRepository struct {
	db DBTX
}

func NewSQLRepository(db DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Get(ctx context.Context, table Table, key string) (*Item, error) {
	query :=
		`SELECT data, version FROM records
		 WHERE tbl = $1 AND pk = $2`

	item := &Item{Key: key}
	err := r.db.QueryRowContext(ctx, query, table.Name, key).Scan(&item.Data, &item.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *SQLRepository) Put(ctx context.Context, table Table, item Item, cond Condition) error {
	if cond != IfNotExists {
		return r.Update(ctx, table, item.Key, item.Data)
	}

	query :=
		`INSERT INTO records (tbl, pk, data, version)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (tbl, pk) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, table.Name, item.Key, item.Data)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *SQLRepository) Update(ctx context.Context, table Table, key string, data string) error {
	query :=
		`INSERT INTO records (tbl, pk, data, version)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (tbl, pk) DO UPDATE
		 SET data = EXCLUDED.data, version = records.version + 1`

	if _, err := r.db.ExecContext(ctx, query, table.Name, key, data); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) UpdateIfVersion(ctx context.Context, table Table, key string, data string, version int64) error {
	query :=
		`UPDATE records SET data = $3, version = version + 1
		 WHERE tbl = $1 AND pk = $2 AND version = $4`

	res, err := r.db.ExecContext(ctx, query, table.Name, key, data, version)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *SQLRepository) Scan(ctx context.Context, table Table) ([]Item, error) {
	query :=
		`SELECT pk, data, version FROM records
		 WHERE tbl = $1
		 ORDER BY pk`

	rows, err := r.db.QueryContext(ctx, query, table.Name)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.Key, &item.Data, &item.Version); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrConditionFailed
	}
	return nil
}
