package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an Error. The HTTP layer derives the status code from it.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuthentication
	KindAuthorization
	KindStore
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindStore:
		return "store"
	case KindStoreUnavailable:
		return "store_unavailable"
	default:
		return "unexpected"
	}
}

// Error is the error type returned by every service operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so errors.Is(err, ErrNotFound) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrAuthentication   = &Error{Kind: KindAuthentication}
	ErrAuthorization    = &Error{Kind: KindAuthorization}
	ErrStore            = &Error{Kind: KindStore}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
)

func ValidationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundError(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func ConflictError(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func AuthenticationError(msg string) error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func AuthorizationError(msg string) error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func StoreError(err error) error {
	return &Error{Kind: KindStore, Message: "database error", Err: err}
}

func StoreUnavailableError(err error) error {
	return &Error{Kind: KindStoreUnavailable, Message: "database unavailable", Err: err}
}

func UnexpectedError(err error) error {
	return &Error{Kind: KindUnexpected, Message: "internal server error", Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain. Errors outside the
// taxonomy are KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// PublicMessage is the message safe to show to API clients.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return e.Kind.String()
	}
	return "internal server error"
}
