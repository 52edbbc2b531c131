package services

import (
	"errors"
	"fmt"

	"github.com/rezakmal/insightify/internal/validator"
)

// Credential and account errors
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// Token verification errors, in the order Verify checks them
var (
	ErrNoToken         = errors.New("no token provided")
	ErrTokenMalformed  = errors.New("token malformed")
	ErrTokenExpired    = errors.New("token expired")
	ErrBadSignature    = errors.New("token signature invalid")
	ErrTokenRevoked    = errors.New("token revoked")
	ErrUnknownUser     = errors.New("token subject no longer exists")
	ErrNoActiveSession = errors.New("no active session")
	ErrNotLoggedIn     = errors.New("not logged in")
)

// Learning domain errors
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrModuleNotFound     = errors.New("module not found")
	ErrQuizNotFound       = errors.New("no quiz for this module")
	ErrNoAnswers          = errors.New("no answers submitted")
	ErrNotEnrolled        = errors.New("not enrolled in this course")
	ErrPrerequisiteNotMet = errors.New("previous module quiz not passed")
	ErrInvalidEvent       = errors.New("activity event missing actor or type")
)

// Insight gateway errors
var (
	ErrProfileNotGenerated = errors.New("learning profile not generated yet")
	ErrMlTimeout           = errors.New("insight service request timed out")
	ErrMlUnreachable       = errors.New("insight service unreachable")
)

// UpstreamError is a non-2xx reply from the insight service.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("insight service returned %d: %s", e.Status, e.Detail)
}

// NewValidationError builds a single-field validation failure
func NewValidationError(field, message string, value interface{}) error {
	return validator.ValidationErrors{{
		Field:   field,
		Message: message,
		Value:   value,
	}}
}

// IsAuthError reports whether err belongs to the 401 class of token
// verification failures.
func IsAuthError(err error) bool {
	for _, authErr := range []error{
		ErrNoToken,
		ErrTokenMalformed,
		ErrTokenExpired,
		ErrBadSignature,
		ErrTokenRevoked,
		ErrUnknownUser,
		ErrNoActiveSession,
	} {
		if errors.Is(err, authErr) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err maps to a 404.
func IsNotFound(err error) bool {
	for _, nfErr := range []error{
		ErrCourseNotFound,
		ErrModuleNotFound,
		ErrQuizNotFound,
		ErrUserNotFound,
	} {
		if errors.Is(err, nfErr) {
			return true
		}
	}
	return false
}

// IsForbidden reports whether err maps to a 403 gating denial.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrNotEnrolled) || errors.Is(err, ErrPrerequisiteNotMet)
}
