package fault

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is.
var (
	ErrInvalidInput  = errors.New("invalid_input")
	ErrNotFound      = errors.New("not_found")
	ErrConflict      = errors.New("conflict")
	ErrStorage       = errors.New("storage_failure")
	ErrNotConfigured = errors.New("not_configured")
)

// Error carries a kind, a human readable message and an optional cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func InvalidInput(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

func NotConfigured(format string, args ...any) error {
	return &Error{Kind: ErrNotConfigured, Msg: fmt.Sprintf(format, args...)}
}

// Storage wraps a persistence error. Errors that already carry a kind pass through.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{Kind: ErrStorage, Msg: op, Err: err}
}

// Kind returns the kind of err, or nil when it has none.
func Kind(err error) error {
	for _, k := range []error{ErrInvalidInput, ErrNotFound, ErrConflict, ErrStorage, ErrNotConfigured} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Message returns the human readable part of err.
func Message(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Msg
	}
	return err.Error()
}
