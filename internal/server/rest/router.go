// Package rest exposes the platform over HTTP with chi.
package rest

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/capacitanet/internal/logging"
	"github.com/dmitrijs2005/capacitanet/internal/server/models"
	"github.com/dmitrijs2005/capacitanet/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type UserAPI interface {
	Register(ctx context.Context, in services.RegisterInput) error
	Login(ctx context.Context, creds services.Credentials) (string, error)
	ChangePassword(ctx context.Context, principal string, in services.ChangePasswordInput) error
	Deactivate(ctx context.Context, principal string, creds services.Credentials) error
	Profile(ctx context.Context, username string) (*models.User, error)
}

type CourseAPI interface {
	Create(ctx context.Context, principal string, in services.CreateCourseInput) (*models.Course, error)
	List(ctx context.Context, principal string, active bool) ([]models.Course, error)
	AttachResource(ctx context.Context, principal, courseID string, in services.AttachResourceInput) (*models.Resource, error)
	ToggleActive(ctx context.Context, principal, courseID string) (bool, error)
}

type EnrollmentAPI interface {
	Subscribe(ctx context.Context, username, courseID string) (services.SubscribeResult, error)
	MarkModuleViewed(ctx context.Context, username, courseID, resourceID string) (bool, error)
}

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Users          UserAPI
	Courses        CourseAPI
	Enrollment     EnrollmentAPI
	Tokens         TokenValidator
	Logger         logging.Logger
	AllowedOrigins []string
	// MaxUploadBytes caps resource upload requests. Zero means
	// DefaultMaxUploadBytes.
	MaxUploadBytes int64
}

type handler struct {
	users      UserAPI
	courses    CourseAPI
	enrollment EnrollmentAPI
	maxUpload  int64
	log        logging.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(d Deps) *chi.Mux {
	h := &handler{
		users:      d.Users,
		courses:    d.Courses,
		enrollment: d.Enrollment,
		maxUpload:  d.MaxUploadBytes,
		log:        d.Logger.With("module", "rest"),
	}
	if h.maxUpload <= 0 {
		h.maxUpload = DefaultMaxUploadBytes
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(Gate(d.Tokens))

	r.Get("/health", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Post("/password", h.changePassword)
			r.Post("/deactivate", h.deactivate)
			r.Get("/me", h.profile)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h.listCourses)
			r.Post("/", h.createCourse)
			r.Route("/{courseID}", func(r chi.Router) {
				r.Post("/resources", h.attachResource)
				r.Post("/toggle-active", h.toggleActive)
				r.Post("/subscribe", h.subscribe)
				r.Post("/resources/{resourceID}/viewed", h.markViewed)
			})
		})
	})

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, "ok")
}

// principal reads the gate's subject; a missing one is a wiring bug.
func principal(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeStatus(w, http.StatusUnauthorized, "authorization required")
	}
	return p, ok
}
