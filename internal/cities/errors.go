package cities

import (
	"errors"
	"fmt"
)

// Failure kinds reported by the gateway. Match them with errors.Is.
var (
	// ErrNetwork covers transport failures and unexpected HTTP statuses.
	ErrNetwork = errors.New("network error")
	// ErrDecode means the response body was not the expected JSON.
	ErrDecode = errors.New("decode error")
	// ErrNotFound means the backend has no city with the requested id.
	ErrNotFound = errors.New("not found")
	// ErrValidation means a draft was rejected, locally or by the backend.
	ErrValidation = errors.New("validation error")
)

// Error is the error type returned by Client methods.
type Error struct {
	Op   string // fetch all, fetch one, create, remove
	Kind error  // one of the Err* kinds above
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cities: %s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("cities: %s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the failure kind carried by err, or nil if err did not come
// from this package.
func KindOf(err error) error {
	for _, kind := range []error{ErrNetwork, ErrDecode, ErrNotFound, ErrValidation} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

func newError(op string, kind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: cause}
}
