package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the handler layer can map it to a status code
// and callers can tell "retry as-is" (transient) from "fix and resubmit".
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindValidation     Kind = "validation"
	KindAuthorization  Kind = "authorization"
	KindConflict       Kind = "conflict"
	KindStateViolation Kind = "state_violation"
	KindTransient      Kind = "transient"
	KindInternal       Kind = "internal"
)

// Error is the failure type every service returns. The message is safe to
// show to callers; storage details never end up in it.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Authorizationf(format string, args ...any) error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func StateViolationf(format string, args ...any) error {
	return &Error{Kind: KindStateViolation, Message: fmt.Sprintf(format, args...)}
}

func Transientf(format string, args ...any) error {
	return &Error{Kind: KindTransient, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindInternal for anything untyped.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool { return KindOf(err) == k }
