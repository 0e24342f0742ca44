package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/capacitanet/internal/common"
	"github.com/dmitrijs2005/capacitanet/internal/logging"
	"github.com/dmitrijs2005/capacitanet/internal/server/auth"
	"github.com/dmitrijs2005/capacitanet/internal/server/config"
	"github.com/dmitrijs2005/capacitanet/internal/server/models"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/users"
)

// RegisterInput is the registration request.
type RegisterInput struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// Credentials identify a user for login and for re-authenticated changes.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordInput carries the current credentials and the replacement password.
type ChangePasswordInput struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

// UserService handles registration, login and account changes.
type UserService struct {
	users          users.Repository
	hasher         *auth.PasswordHasher
	tokens         *auth.TokenService
	allowedDomains []string
	attempts       int
	log            logging.Logger
}

// NewUserService creates a UserService. Allowed domains and the update retry
// budget are read from cfg.
func NewUserService(repo users.Repository, hasher *auth.PasswordHasher, tokens *auth.TokenService, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		users:          repo,
		hasher:         hasher,
		tokens:         tokens,
		allowedDomains: cfg.AllowedDomains,
		attempts:       cfg.MaxUpdateAttempts,
		log:            log.With("module", "users"),
	}
}

func (s *UserService) validate(in RegisterInput) error {
	switch {
	case strings.TrimSpace(in.Username) == "":
		return ErrUsernameRequired
	case strings.TrimSpace(in.FirstName) == "":
		return ErrFirstNameRequired
	case strings.TrimSpace(in.LastName) == "":
		return ErrLastNameRequired
	case strings.TrimSpace(in.Password) == "":
		return ErrPasswordRequired
	case len(in.Password) > auth.MaxPasswordBytes:
		return ErrPasswordTooLong
	}

	username := models.CanonicalUsername(in.Username)
	for _, d := range s.allowedDomains {
		if strings.HasSuffix(username, strings.ToLower(d)) {
			return nil
		}
	}
	return ErrDomainNotAllowed
}

// Register creates an active user under the canonical username. A taken
// username yields ErrUserExists and leaves the stored record untouched.
func (s *UserService) Register(ctx context.Context, in RegisterInput) error {
	if err := s.validate(in); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:  models.CanonicalUsername(in.Username),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  hash,
		Active:    true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	s.log.Info(ctx, "user registered", "username", user.Username)
	return nil
}

// authenticate runs the login check. Missing and inactive users are reported
// the same way.
func (s *UserService) authenticate(ctx context.Context, creds Credentials) (*models.User, error) {
	username := models.CanonicalUsername(creds.Username)
	user, err := s.users.Get(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Info(ctx, "login for unknown user", "username", username)
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.Active {
		s.log.Info(ctx, "login for inactive user", "username", username)
		return nil, ErrUserNotFound
	}

	if !s.hasher.Verify(creds.Password, user.Password) {
		return nil, ErrBadCredentials
	}

	return user, nil
}

// Login checks creds and returns a signed access token for the user.
func (s *UserService) Login(ctx context.Context, creds Credentials) (string, error) {
	user, err := s.authenticate(ctx, creds)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// reauthenticate checks that principal owns creds and that they still log in.
func (s *UserService) reauthenticate(ctx context.Context, principal string, creds Credentials) (*models.User, error) {
	if principal != models.CanonicalUsername(creds.Username) {
		return nil, ErrUnauthorizedChange
	}

	user, err := s.authenticate(ctx, creds)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrBadCredentials) {
			return nil, ErrUnauthorizedChange
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the password of in.Username. The principal must be
// that user and the current password must still log in.
func (s *UserService) ChangePassword(ctx context.Context, principal string, in ChangePasswordInput) error {
	if strings.TrimSpace(in.NewPassword) == "" {
		return ErrNewPasswordRequired
	}
	if len(in.NewPassword) > auth.MaxPasswordBytes {
		return ErrPasswordTooLong
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = retryOnConflict(ctx, s.attempts, func() error {
		user, err := s.reauthenticate(ctx, principal, Credentials{Username: in.Username, Password: in.Password})
		if err != nil {
			return err
		}
		user.Password = hash
		return s.users.Save(ctx, user)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "password changed", "username", principal)
	return nil
}

// Deactivate marks the user inactive. The record is kept.
func (s *UserService) Deactivate(ctx context.Context, principal string, creds Credentials) error {
	err := retryOnConflict(ctx, s.attempts, func() error {
		user, err := s.reauthenticate(ctx, principal, creds)
		if err != nil {
			return err
		}
		user.Active = false
		return s.users.Save(ctx, user)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "user deactivated", "username", principal)
	return nil
}

// Profile returns the user with the password masked and the storage keys of
// enrolled resources removed.
func (s *UserService) Profile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.Get(ctx, models.CanonicalUsername(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	masked := user.Masked()
	return &masked, nil
}
