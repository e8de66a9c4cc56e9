package services

import (
	"errors"
	"fmt"

	"github.com/gdgoc-itb/lms-service/internal/repositories"
)

// ErrorKind classifies service failures. Handlers map each kind to one HTTP status.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// ServiceError is a classified failure whose Message is safe to show to clients.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches another ServiceError with the same kind and message, so wrapped copies
// of a sentinel still satisfy errors.Is.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newError(kind ErrorKind, message string) *ServiceError {
	return &ServiceError{Kind: kind, Message: message}
}

// withCause returns a copy of sentinel carrying err for logs.
func withCause(sentinel *ServiceError, err error) error {
	return &ServiceError{Kind: sentinel.Kind, Message: sentinel.Message, Err: err}
}

// KindOf returns the kind of the first ServiceError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// Auth errors
var (
	ErrIDTokenRequired        = newError(KindValidation, "Google ID token is required")
	ErrInvalidGoogleToken     = newError(KindAuthentication, "Invalid Google token")
	ErrEmailNotVerified       = newError(KindAuthentication, "Google account email is not verified")
	ErrBuddyRegistrationFirst = newError(KindAuthorization, "Email is not whitelisted, please register as Buddy first")
	ErrAlreadyMember          = newError(KindConflict, "Email is already a Member, log in directly")
	ErrBuddyAlreadyRegistered = newError(KindConflict, "Buddy already registered with this email")
	ErrEmailAlreadyRegistered = newError(KindConflict, "Email is already registered")
	ErrNoToken                = newError(KindAuthentication, "Not authorized, no token provided")
	ErrTokenFailed            = newError(KindAuthentication, "Not authorized, token failed")
	ErrUserGone               = newError(KindAuthentication, "Not authorized, user not found")
	ErrAdminRequired          = newError(KindAuthorization, "Admin access required")
	ErrForbidden              = newError(KindAuthorization, "You do not have permission to perform this action")
)

// Resource errors
var (
	ErrUserNotFound        = newError(KindNotFound, "User not found")
	ErrPathNotFound        = newError(KindNotFound, "Path not found")
	ErrModuleNotFound      = newError(KindNotFound, "Module not found")
	ErrLectureNotFound     = newError(KindNotFound, "Lecture not found")
	ErrProblemSetNotFound  = newError(KindNotFound, "Problem set not found")
	ErrSubmissionNotFound  = newError(KindNotFound, "Submission not found")
	ErrEventNotFound       = newError(KindNotFound, "Event not found")
	ErrAttendeeNotFound    = newError(KindNotFound, "Attendee not found")
	ErrNotRSVPed           = newError(KindNotFound, "You have not RSVPed for this event")
	ErrCertificateNotFound = newError(KindNotFound, "Certificate not found")
)

// Workflow errors
var (
	ErrDeadlinePassed         = newError(KindConflict, "Deadline has passed")
	ErrSubmissionLinkRequired = newError(KindValidation, "Submission link is required")
	ErrSubmissionFileRequired = newError(KindValidation, "Submission file is required")
	ErrSubmissionNotImage     = newError(KindValidation, "Submission must be an image")
	ErrInvalidGrade           = newError(KindValidation, "Grade is out of range")
	ErrAlreadyRSVPed          = newError(KindConflict, "You have already RSVPed for this event")
	ErrEventFull              = newError(KindConflict, "Event is at full capacity")
	ErrEventMembersOnly       = newError(KindAuthorization, "This event is open to Members only")
	ErrContentMembersOnly     = newError(KindAuthorization, "This content is available to Members only")
	ErrCertificateIDExhausted = newError(KindConflict, "Could not allocate a unique certificate ID")
	ErrUploadFailed           = newError(KindUpstream, "Error uploading file to storage")
)

// mapRepoError converts a repository not-found into notFound and wraps anything else.
func mapRepoError(err error, notFound *ServiceError, action string) error {
	if repositories.IsNotFoundError(err) {
		return notFound
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
