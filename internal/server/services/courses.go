package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/capacitanet/internal/common"
	"github.com/dmitrijs2005/capacitanet/internal/logging"
	"github.com/dmitrijs2005/capacitanet/internal/server/config"
	"github.com/dmitrijs2005/capacitanet/internal/server/models"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/courses"
	"github.com/dmitrijs2005/capacitanet/internal/server/storage"
	"github.com/google/uuid"
)

// CreateCourseInput is the course registration request.
type CreateCourseInput struct {
	CourseID    string   `json:"courseId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// AttachResourceInput describes an uploaded file. Size may be -1 when unknown.
type AttachResourceInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	Order       int
	Kind        string
}

// CourseService manages the course catalog and its resource files.
type CourseService struct {
	courses  courses.Repository
	objects  storage.ObjectStore
	urlTTL   time.Duration
	attempts int
	newID    func() string
	log      logging.Logger
}

// NewCourseService creates a CourseService that stores resource files in
// objects and signs download URLs for cfg.ResourceURLTTL.
func NewCourseService(repo courses.Repository, objects storage.ObjectStore, cfg *config.Config, log logging.Logger) *CourseService {
	return &CourseService{
		courses:  repo,
		objects:  objects,
		urlTTL:   cfg.ResourceURLTTL,
		attempts: cfg.MaxUpdateAttempts,
		newID:    uuid.NewString,
		log:      log.With("module", "courses"),
	}
}

// ResourceKey is the object key a course resource is stored under.
func ResourceKey(courseID, fileName string) string {
	return fmt.Sprintf("courses/%s/%s", courseID, fileName)
}

// Create stores a new active course owned by principal.
func (s *CourseService) Create(ctx context.Context, principal string, in CreateCourseInput) (*models.Course, error) {
	switch {
	case strings.TrimSpace(in.CourseID) == "":
		return nil, ErrCourseIDRequired
	case strings.TrimSpace(in.Title) == "":
		return nil, ErrTitleRequired
	}

	course := &models.Course{
		CourseID:        strings.TrimSpace(in.CourseID),
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		CreatorUsername: models.CanonicalUsername(principal),
		Active:          true,
		Tags:            slices.Clone(in.Tags),
	}
	course.Normalize()

	if err := s.courses.Create(ctx, course); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, ErrCourseExists
		}
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.log.Info(ctx, "course registered", "course_id", course.CourseID, "creator", principal)
	return course, nil
}

// List returns the courses whose active flag equals active, ordered by id.
// Inactive courses are only visible to their creator. Resource storage keys
// are swapped for freshly signed download URLs.
func (s *CourseService) List(ctx context.Context, principal string, active bool) ([]models.Course, error) {
	all, err := s.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	out := make([]models.Course, 0, len(all))
	for _, c := range all {
		if c.Active != active {
			continue
		}
		if !c.Active && !c.OwnedBy(principal) {
			continue
		}
		if err := s.signResources(ctx, c); err != nil {
			return nil, err
		}
		out = append(out, *c)
	}

	slices.SortFunc(out, func(a, b models.Course) int {
		return strings.Compare(a.CourseID, b.CourseID)
	})
	return out, nil
}

func (s *CourseService) signResources(ctx context.Context, c *models.Course) error {
	for i := range c.Resources {
		r := &c.Resources[i]
		if r.StorageKey == "" {
			continue
		}
		u, err := s.objects.PresignGet(ctx, r.StorageKey, s.urlTTL)
		if err != nil {
			return fmt.Errorf("sign resource %s of %s: %w", r.ID, c.CourseID, err)
		}
		r.URL = u
		r.StorageKey = ""
	}
	return nil
}

// AttachResource uploads a file and appends it to the course resources.
// Only the creator may attach.
func (s *CourseService) AttachResource(ctx context.Context, principal, courseID string, in AttachResourceInput) (*models.Resource, error) {
	name := path.Base(strings.ReplaceAll(in.FileName, "\\", "/"))
	if in.Body == nil || name == "." || name == "/" {
		return nil, ErrFileRequired
	}

	if _, err := s.ownedCourse(ctx, principal, courseID); err != nil {
		return nil, err
	}

	key := ResourceKey(courseID, name)
	if err := s.objects.PutObject(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return nil, fmt.Errorf("upload resource: %w", err)
	}

	res := models.Resource{
		ID:         s.newID(),
		Order:      in.Order,
		Kind:       in.Kind,
		Name:       name,
		StorageKey: key,
	}

	err := retryOnConflict(ctx, s.attempts, func() error {
		course, err := s.ownedCourse(ctx, principal, courseID)
		if err != nil {
			return err
		}
		course.Resources = append(course.Resources, res)
		return s.courses.Save(ctx, course)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "resource attached", "course_id", courseID, "resource_id", res.ID, "key", key)
	return &res, nil
}

// ToggleActive flips the course active flag and returns the new value.
func (s *CourseService) ToggleActive(ctx context.Context, principal, courseID string) (bool, error) {
	var active bool
	err := retryOnConflict(ctx, s.attempts, func() error {
		course, err := s.ownedCourse(ctx, principal, courseID)
		if err != nil {
			return err
		}
		course.Active = !course.Active
		active = course.Active
		return s.courses.Save(ctx, course)
	})
	if err != nil {
		return false, err
	}

	s.log.Info(ctx, "course toggled", "course_id", courseID, "active", active)
	return active, nil
}

func (s *CourseService) ownedCourse(ctx context.Context, principal, courseID string) (*models.Course, error) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	if !course.OwnedBy(principal) {
		return nil, ErrNotCourseOwner
	}
	return course, nil
}
