package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/capacitanet/internal/common"
	"github.com/dmitrijs2005/capacitanet/internal/logging"
	"github.com/dmitrijs2005/capacitanet/internal/server/auth"
	"github.com/dmitrijs2005/capacitanet/internal/server/config"
	"github.com/dmitrijs2005/capacitanet/internal/server/models"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/courses"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/records"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/users"
	"github.com/dmitrijs2005/capacitanet/internal/server/storage"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	cfg        *config.Config
	store      *records.MemoryRepository
	userRepo   users.Repository
	courseRepo courses.Repository
	objects    *storage.MemoryStore
	tokens     *auth.TokenService

	users      *UserService
	courses    *CourseService
	enrollment *EnrollmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	f := &fixture{cfg: cfg, store: records.NewMemoryRepository()}
	f.userRepo = users.NewRecordRepository(f.store, records.Table{Name: "users"}, cfg.OptimisticUpdates)
	f.courseRepo = courses.NewRecordRepository(f.store, records.Table{Name: "courses"}, cfg.OptimisticUpdates)
	f.objects = storage.NewMemoryStore(cfg.S3Bucket).WithClock(func() time.Time { return testNow })
	f.tokens = auth.NewTokenService([]byte("test-secret"), cfg.AccessTokenValidityDuration)
	f.wire()
	return f
}

// wire (re)builds the services over the fixture's repositories.
func (f *fixture) wire() {
	log := logging.Nop{}
	f.users = NewUserService(f.userRepo, auth.NewPasswordHasher(bcrypt.MinCost), f.tokens, f.cfg, log)
	f.courses = NewCourseService(f.courseRepo, f.objects, f.cfg, log)
	f.enrollment = NewEnrollmentService(f.userRepo, f.courseRepo, f.cfg, log).WithClock(func() time.Time { return testNow })
}

func (f *fixture) register(t *testing.T, username, password string) {
	t.Helper()
	err := f.users.Register(context.Background(), RegisterInput{
		Username: username, FirstName: "First", LastName: "Last", Password: password,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
}

func (f *fixture) course(t *testing.T, owner, id string) {
	t.Helper()
	if _, err := f.courses.Create(context.Background(), owner, CreateCourseInput{CourseID: id, Title: id}); err != nil {
		t.Fatalf("create course %s: %v", id, err)
	}
}

// conflictingUsers fails the first n saves with a version conflict.
type conflictingUsers struct {
	users.Repository
	conflicts int
	saves     int
}

func (c *conflictingUsers) Save(ctx context.Context, u *models.User) error {
	c.saves++
	if c.conflicts > 0 {
		c.conflicts--
		return common.ErrVersionConflict
	}
	return c.Repository.Save(ctx, u)
}

// conflictingCourses fails the first n saves with a version conflict.
type conflictingCourses struct {
	courses.Repository
	conflicts int
	saves     int
}

func (c *conflictingCourses) Save(ctx context.Context, course *models.Course) error {
	c.saves++
	if c.conflicts > 0 {
		c.conflicts--
		return common.ErrVersionConflict
	}
	return c.Repository.Save(ctx, course)
}

// brokenUsers fails every call with err.
type brokenUsers struct{ err error }

func (b brokenUsers) Get(context.Context, string) (*models.User, error) { return nil, b.err }
func (b brokenUsers) Create(context.Context, *models.User) error        { return b.err }
func (b brokenUsers) Save(context.Context, *models.User) error          { return b.err }
