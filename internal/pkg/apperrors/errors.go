package apperrors

import "errors"

// Kind classifies an error into one of the outcomes the enrollment core reports
type Kind int

const (
	// KindInternal is any fault not otherwise classified
	KindInternal Kind = iota
	// KindNotFound - lookup by matric number found nothing
	KindNotFound
	// KindUnauthorized - login failed (unknown username or wrong password)
	KindUnauthorized
	// KindDuplicateUsername - registration collided with an existing username
	KindDuplicateUsername
	// KindAssignmentConflict - matriculation target missing or already matriculated
	KindAssignmentConflict
	// KindHashing - the credential hasher rejected its input
	KindHashing
	// KindStorage - the relational store failed
	KindStorage
)

// String returns the name of the kind, used as a log and metric label
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindDuplicateUsername:
		return "duplicate_username"
	case KindAssignmentConflict:
		return "assignment_conflict"
	case KindHashing:
		return "hashing"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// IsDomain reports whether the kind is an expected outcome rather than an infrastructure fault
func (k Kind) IsDomain() bool {
	switch k {
	case KindNotFound, KindUnauthorized, KindDuplicateUsername, KindAssignmentConflict:
		return true
	default:
		return false
	}
}

// Domain errors
var (
	ErrNotFound           = errors.New("student not found")
	ErrUnauthorized       = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrAssignmentConflict = errors.New("student not found or already has matric number")
)

// Infrastructure errors
var (
	ErrHashing  = errors.New("password hashing failed")
	ErrStorage  = errors.New("storage failure")
	ErrInternal = errors.New("internal error")
)

var sentinels = map[Kind]error{
	KindNotFound:           ErrNotFound,
	KindUnauthorized:       ErrUnauthorized,
	KindDuplicateUsername:  ErrDuplicateUsername,
	KindAssignmentConflict: ErrAssignmentConflict,
	KindHashing:            ErrHashing,
	KindStorage:            ErrStorage,
	KindInternal:           ErrInternal,
}

// CustomError represents application-specific errors with additional context.
// Err is the sentinel for the kind, Cause the underlying fault (may be nil).
type CustomError struct {
	Kind    Kind
	Err     error
	Cause   error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As
func (e *CustomError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// New creates a CustomError of the given kind wrapping cause
func New(kind Kind, message string, cause error) *CustomError {
	return &CustomError{
		Kind:    kind,
		Err:     sentinels[kind],
		Cause:   cause,
		Message: message,
	}
}

// NewStorageError wraps a persistence fault
func NewStorageError(message string, cause error) error {
	return New(KindStorage, message, cause)
}

// NewHashingError wraps a credential hasher fault
func NewHashingError(message string, cause error) error {
	return New(KindHashing, message, cause)
}

// KindOf classifies err. nil and unknown errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}

	var custom *CustomError
	if errors.As(err, &custom) {
		return custom.Kind
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrDuplicateUsername):
		return KindDuplicateUsername
	case errors.Is(err, ErrAssignmentConflict):
		return KindAssignmentConflict
	case errors.Is(err, ErrHashing):
		return KindHashing
	case errors.Is(err, ErrStorage):
		return KindStorage
	default:
		return KindInternal
	}
}
