package services

import "github.com/dmitrijs2005/capacitanet/internal/common"

// Caller-facing failures. Each unwraps to the common kind that decides the
// transport status.
var (
	ErrUsernameRequired    = common.NewError(common.ErrorValidation, "username is required")
	ErrFirstNameRequired   = common.NewError(common.ErrorValidation, "first name is required")
	ErrLastNameRequired    = common.NewError(common.ErrorValidation, "last name is required")
	ErrPasswordRequired    = common.NewError(common.ErrorValidation, "password is required")
	ErrNewPasswordRequired = common.NewError(common.ErrorValidation, "new password is required")
	ErrPasswordTooLong     = common.NewError(common.ErrorValidation, "password too long")
	ErrDomainNotAllowed    = common.NewError(common.ErrorValidation, "username must belong to an allowed corporate domain")
	ErrCourseIDRequired    = common.NewError(common.ErrorValidation, "course id is required")
	ErrTitleRequired       = common.NewError(common.ErrorValidation, "title is required")
	ErrFileRequired        = common.NewError(common.ErrorValidation, "file is required")

	ErrUserNotFound   = common.NewError(common.ErrorNotFound, "user not found")
	ErrCourseNotFound = common.NewError(common.ErrorNotFound, "course not found")
	ErrCourseInactive = common.NewError(common.ErrorNotFound, "course inactive or missing")

	ErrBadCredentials     = common.NewError(common.ErrorUnauthorized, "bad credentials")
	ErrUnauthorizedChange = common.NewError(common.ErrorUnauthorized, "unauthorized change")
	ErrNotCourseOwner     = common.NewError(common.ErrorUnauthorized, "only the course creator can change it")

	ErrUserExists   = common.NewError(common.ErrorAlreadyExists, "user already registered")
	ErrCourseExists = common.NewError(common.ErrorAlreadyExists, "course already registered")
)
