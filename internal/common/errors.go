package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrConditionFailed = errors.New("condition failed")
	ErrVersionConflict = errors.New("version conflict")

	// Service-level errors. They are the kinds the transport maps to statuses.
	ErrorValidation    = errors.New("validation error")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorInternal      = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)

// Error pairs an error kind (one of the sentinels above) with the message
// shown to the caller. errors.Is(err, kind) holds for any *Error built from kind.
type Error struct {
	Kind    error
	Message string
}

// NewError returns an *Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Is makes two *Error values with the same kind and message compare equal,
// so package-level error values survive being copied.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// Message extracts the caller-facing message from err, falling back to the
// given default when err carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return fallback
}
