// Package errs defines the error kinds shared across layers.
//
// Every domain failure wraps exactly one of the sentinel kinds below so that
// transports can map it with errors.Is, while the message stays suitable for
// showing to a user.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel error kinds.
var (
	// ErrValidation marks bad input shape or range.
	ErrValidation = errors.New("validation_error")
	// ErrNotFound marks a referenced user, group, expense or settlement that does not exist.
	ErrNotFound = errors.New("not_found")
	// ErrForbidden marks an authorization failure.
	ErrForbidden = errors.New("forbidden")
	// ErrExternalService marks a failed call to the command interpreter.
	ErrExternalService = errors.New("external_service_error")
	// ErrConsistency marks a storage-level race or a drifted materialized balance.
	ErrConsistency = errors.New("consistency_error")
)

// Error is a domain error with a user-facing message.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Unwrap returns the sentinel kind.
func (e *Error) Unwrap() error { return e.kind }

func newf(kind error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Validation returns an ErrValidation error.
func Validation(format string, args ...any) error { return newf(ErrValidation, format, args...) }

// NotFound returns an ErrNotFound error.
func NotFound(format string, args ...any) error { return newf(ErrNotFound, format, args...) }

// Forbidden returns an ErrForbidden error.
func Forbidden(format string, args ...any) error { return newf(ErrForbidden, format, args...) }

// Consistency returns an ErrConsistency error.
func Consistency(format string, args ...any) error { return newf(ErrConsistency, format, args...) }

// Kind returns the sentinel kind err wraps, or nil if it wraps none.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrExternalService, ErrConsistency} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
