// Package repomanager builds the record store selected by configuration and
// vends the typed repositories bound to it.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/capacitanet/internal/server/config"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/courses"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/records"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/users"
)

// Attribute names of the two record tables. They match the layout of the
// existing DynamoDB tables.
const (
	UsersKeyAttr    = "username"
	UsersDataAttr   = "profile"
	CoursesKeyAttr  = "courseId"
	CoursesDataAttr = "courseData"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Courses() courses.Repository
	Close() error
}

// New opens the record store named by cfg.RecordStoreDriver.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.RecordStoreDriver {
	case config.DriverMemory:
		return NewMemoryRepositoryManager(cfg), nil
	case config.DriverSQLite, config.DriverPostgres:
		return NewSQLRepositoryManager(cfg)
	case config.DriverDynamoDB:
		return NewDynamoRepositoryManager(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown record store driver %q", cfg.RecordStoreDriver)
	}
}

// base vends typed repositories over any records.Repository.
type base struct {
	store      records.Repository
	users      records.Table
	courses    records.Table
	optimistic bool
}

func newBase(store records.Repository, cfg *config.Config) base {
	return base{
		store:      store,
		users:      records.Table{Name: cfg.UsersTable, KeyAttr: UsersKeyAttr, DataAttr: UsersDataAttr},
		courses:    records.Table{Name: cfg.CoursesTable, KeyAttr: CoursesKeyAttr, DataAttr: CoursesDataAttr},
		optimistic: cfg.OptimisticUpdates,
	}
}

// Users returns a users.Repository bound to the users table.
func (b *base) Users() users.Repository {
	return users.NewRecordRepository(b.store, b.users, b.optimistic)
}

// Courses returns a courses.Repository bound to the courses table.
func (b *base) Courses() courses.Repository {
	return courses.NewRecordRepository(b.store, b.courses, b.optimistic)
}

// Store exposes the underlying record store.
func (b *base) Store() records.Repository {
	return b.store
}
