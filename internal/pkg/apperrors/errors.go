package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Adjudication errors. All are request-scoped and recoverable by the caller;
// none is fatal to the process.
var (
	// ErrMissingOriginInstitution means the application carries neither a
	// direct origin-institution reference nor a campus name that resolves to
	// one. Matching and template learning cannot proceed without it.
	ErrMissingOriginInstitution = errors.New("origin institution is not set for this application")

	// ErrNotFullyMatched means bulk catalog approval was attempted while some
	// group members have no active catalog match. The group moves as one
	// unit, so the caller must route the whole group to an SME instead.
	ErrNotFullyMatched = errors.New("not all subjects in the group have a catalog match")

	// ErrUnresolvedCourse means no destination course could be determined for
	// the subject group.
	ErrUnresolvedCourse = errors.New("destination course could not be resolved for this group")

	// ErrNoActiveSME means the destination course has no active subject
	// method expert appointed.
	ErrNoActiveSME = errors.New("no active subject method expert for this course")

	// ErrNotAssignedReviewer means the caller holds no review assignment for
	// any subject in the group.
	ErrNotAssignedReviewer = errors.New("reviewer is not assigned to this group")

	// ErrInvalidScore means the similarity percentage is outside [0, 100].
	ErrInvalidScore = errors.New("similarity percentage must be between 0 and 100")

	// ErrDuplicateCatalogEntry means an active catalog entry already exists
	// for the uniqueness key. The conflicting entry travels in the error
	// details so the caller can reuse it.
	ErrDuplicateCatalogEntry = errors.New("an active catalog entry already exists for this combination")

	// ErrNoPendingSubjects means a group operation found nothing left in a
	// reviewable state, typically because a concurrent action got there first.
	ErrNoPendingSubjects = errors.New("no pending subjects found for this group")

	// ErrNoActiveCoordinator means the destination program has no active
	// coordinator to receive the application.
	ErrNoActiveCoordinator = errors.New("no active coordinator for this program")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with an underlying sentinel
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// Details extracts CustomError details from err, if any.
func Details(err error) map[string]interface{} {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Details
	}
	return nil
}
