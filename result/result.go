// Package result provides a two-variant outcome type that carries either a
// successfully produced value or an error.
//
// A [Result] never exposes its value without also exposing the error, so
// every consumer has to branch:
//
//	user, err := res.Get()
//	if err != nil {
//		return err
//	}
package result

import (
	"errors"
	"fmt"
)

var (
	// ErrNilFailure is stored when [Failure] is called with a nil error.
	ErrNilFailure = errors.New("result: failure with nil error")
	// ErrUnset is reported by the zero value of [Result].
	ErrUnset = errors.New("result: unset")
)

// Result holds exactly one of a value or an error.
type Result[T any] struct {
	value T
	err   error
	ok    bool
}

// Success wraps v in a successful Result.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Failure wraps err in a failed Result.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = ErrNilFailure
	}

	return Result[T]{err: err}
}

// Get returns the value, or the zero value of T and the failure.
func (r Result[T]) Get() (T, error) {
	if !r.ok {
		var zero T
		return zero, r.Err()
	}

	return r.value, nil
}

// Err returns nil on success.
func (r Result[T]) Err() error {
	switch {
	case r.ok:
		return nil
	case r.err == nil:
		return ErrUnset
	default:
		return r.err
	}
}

// IsSuccess reports whether r holds a value.
func (r Result[T]) IsSuccess() bool { return r.ok }

func (r Result[T]) String() string {
	if r.ok {
		return fmt.Sprintf("success(%v)", r.value)
	}

	return fmt.Sprintf("failure(%v)", r.Err())
}

// Match calls exactly one of onSuccess or onFailure and returns its output.
func Match[T, U any](r Result[T], onSuccess func(T) U, onFailure func(error) U) U {
	if r.ok {
		return onSuccess(r.value)
	}

	return onFailure(r.Err())
}
