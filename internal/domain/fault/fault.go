// Package fault defines the error taxonomy of the ingestion core.
// Every failure the pipeline can route to the DLQ carries one of these
// kinds, so disposition (retry, skip, park) is decided by kind alone.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for DLQ routing and retry policy.
type Kind string

const (
	KindValidation      Kind = "ValidationError"
	KindIdentity        Kind = "IdentityError"
	KindVersionConflict Kind = "VersionConflictError"
	KindStorage         Kind = "StorageError"
	KindProjection      Kind = "ProjectionError"
	KindDuplicateEvent  Kind = "DuplicateEventError"
)

// Fault is an error with a DLQ disposition kind.
type Fault struct {
	Kind   Kind
	Detail string
	cause  error
}

// New creates a Fault with a formatted detail message.
func New(kind Kind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Detail: fmt.Sprintf(format, args...), cause: err}
}

func (f *Fault) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Detail, f.cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

func (f *Fault) Unwrap() error { return f.cause }

// KindOf returns the Kind of err, or KindStorage when err carries no
// explicit classification. Unclassified errors out of the persistence
// layer are storage failures by definition.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindStorage
}

// Is reports whether err is a Fault of the given kind.
func Is(err error, kind Kind) bool {
	var f *Fault
	return errors.As(err, &f) && f.Kind == kind
}

// Retryable reports whether the pipeline should retry before parking
// the event. Validation and identity failures are deterministic and
// never retried.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindStorage, KindVersionConflict:
		return true
	default:
		return false
	}
}
