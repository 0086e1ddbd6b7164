package parse

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is the sentinel wrapped by every [DecodeError].
	ErrDecode = errors.New("decode failure")
	// ErrEmptyPayload is the cause of a DecodeError for an empty byte buffer.
	ErrEmptyPayload = errors.New("empty payload")
	// ErrNullPayload is the cause of a DecodeError when the payload is null
	// and the target type has no null value.
	ErrNullPayload = errors.New("null payload")
)

// DecodeError reports that a payload could not be turned into Target.
// Index is the position of the failing element for sequence parsers,
// and -1 otherwise.
type DecodeError struct {
	Target string
	Index  int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%v: %s: element %d: %v", ErrDecode, e.Target, e.Index, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrDecode, e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is matches [ErrDecode] in addition to the wrapped cause.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func decodeErr(target string, err error) *DecodeError {
	return &DecodeError{Target: target, Index: -1, Err: err}
}
