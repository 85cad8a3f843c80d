package model

import "errors"

var (
	// Login errors. Each failure keeps its own message on purpose; the
	// login endpoint reports them distinctly rather than collapsing them
	// into one uniform response.
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")

	// Token errors. These never escape the request authenticator; a
	// request carrying a bad token simply proceeds as anonymous.
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMalformedToken   = errors.New("malformed token")
	ErrTokenExpired     = errors.New("token expired")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Entity errors
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrRoleNotFound      = errors.New("role not found")
	ErrDuplicateRole     = errors.New("role name already exists")
	ErrStudentNotFound   = errors.New("student not found")
	ErrDuplicateStudent  = errors.New("student code already exists")
	ErrStudentLinked     = errors.New("student is linked to a user")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
