package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/capacitanet/internal/common"
	"github.com/dmitrijs2005/capacitanet/internal/logging"
	"github.com/dmitrijs2005/capacitanet/internal/server/config"
	"github.com/dmitrijs2005/capacitanet/internal/server/models"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/courses"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/users"
)

// SubscribeResult tells a new subscription apart from a repeated one.
type SubscribeResult int

const (
	Subscribed SubscribeResult = iota
	AlreadySubscribed
)

func (r SubscribeResult) String() string {
	if r == AlreadySubscribed {
		return "already subscribed"
	}
	return "subscribed"
}

// EnrollmentService records course subscriptions and progress on the user record.
type EnrollmentService struct {
	users    users.Repository
	courses  courses.Repository
	attempts int
	now      func() time.Time
	log      logging.Logger
}

// NewEnrollmentService creates an EnrollmentService over the user and course
// repositories.
func NewEnrollmentService(userRepo users.Repository, courseRepo courses.Repository, cfg *config.Config, log logging.Logger) *EnrollmentService {
	return &EnrollmentService{
		users:    userRepo,
		courses:  courseRepo,
		attempts: cfg.MaxUpdateAttempts,
		now:      time.Now,
		log:      log.With("module", "enrollment"),
	}
}

// WithClock replaces the clock used to stamp subscriptions.
func (s *EnrollmentService) WithClock(now func() time.Time) *EnrollmentService {
	s.now = now
	return s
}

// Subscribe appends a snapshot of the course to the user's list. Subscribing
// twice is a no-op.
func (s *EnrollmentService) Subscribe(ctx context.Context, username, courseID string) (SubscribeResult, error) {
	username = models.CanonicalUsername(username)
	var result SubscribeResult
	err := retryOnConflict(ctx, s.attempts, func() error {
		user, err := s.users.Get(ctx, username)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("get user: %w", err)
		}

		if user.Enrollment(courseID) != nil {
			result = AlreadySubscribed
			return nil
		}

		course, err := s.courses.Get(ctx, courseID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrCourseInactive
			}
			return fmt.Errorf("get course: %w", err)
		}
		if !course.Active {
			return ErrCourseInactive
		}

		user.Courses = append(user.Courses, course.Snapshot(s.now()))
		result = Subscribed
		return s.users.Save(ctx, user)
	})
	if err != nil {
		return 0, err
	}

	if result == Subscribed {
		s.log.Info(ctx, "user subscribed", "username", username, "course_id", courseID)
	}
	return result, nil
}

// MarkModuleViewed flags a resource of the user's course snapshot as viewed.
// It reports false, without writing, when the user has no such course or
// resource.
func (s *EnrollmentService) MarkModuleViewed(ctx context.Context, username, courseID, resourceID string) (bool, error) {
	username = models.CanonicalUsername(username)
	var found bool
	err := retryOnConflict(ctx, s.attempts, func() error {
		user, err := s.users.Get(ctx, username)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("get user: %w", err)
		}

		found = false
		snap := user.Enrollment(courseID)
		if snap == nil {
			return nil
		}
		for i := range snap.Resources {
			if snap.Resources[i].ID == resourceID {
				snap.Resources[i].Viewed = true
				found = true
				break
			}
		}
		if !found {
			return nil
		}
		return s.users.Save(ctx, user)
	})
	if err != nil {
		return false, err
	}
	return found, nil
}
