// Package records stores entities as single JSON blobs under a primary key.
// Backends: in-memory, SQL (PostgreSQL via pgx, SQLite) and DynamoDB.
package records

import "context"

// Table names a record table and the attribute names used by key-value
// backends that keep one attribute per concern (DynamoDB).
type Table struct {
	Name     string
	KeyAttr  string
	DataAttr string
}

// Item is one stored record. Version starts at 1 and is bumped by every write.
type Item struct {
	Key     string
	Data    string
	Version int64
}

// Condition guards a Put.
type Condition int

const (
	// Always overwrites whatever is stored under the key.
	Always Condition = iota
	// IfNotExists only writes when the key is absent.
	IfNotExists
)

// Repository is the record store contract.
//
// Get returns common.ErrorNotFound for a missing key. Put with IfNotExists and
// UpdateIfVersion return common.ErrConditionFailed when their precondition
// does not hold; the check and the write are a single atomic store operation.
// Update is an unconditional overwrite: last write wins.
type Repository interface {
	Get(ctx context.Context, table Table, key string) (*Item, error)
	Put(ctx context.Context, table Table, item Item, cond Condition) error
	Update(ctx context.Context, table Table, key string, data string) error
	UpdateIfVersion(ctx context.Context, table Table, key string, data string, version int64) error
	Scan(ctx context.Context, table Table) ([]Item, error)
}
