package parse

import (
	"fmt"
	"reflect"

	"github.com/adamwoolhether/typedhttp/internal/validate"
	"github.com/adamwoolhether/typedhttp/result"
)

// Parser converts raw bytes into a Result of T.
type Parser[T any] interface {
	Parse(data []byte) result.Result[T]
}

// Func adapts an ordinary function to a [Parser].
type Func[T any] func(data []byte) result.Result[T]

func (f Func[T]) Parse(data []byte) result.Result[T] { return f(data) }

// Parsable is implemented by types that decode themselves. The method is
// called on a pointer to a fresh zero value.
type Parsable interface {
	ParseBytes(data []byte) error
}

// Of returns the parser for T: T's own Parsable implementation when *T has
// one, [Structured] otherwise.
func Of[T any](optFns ...Option) Parser[T] {
	var zero T
	if _, ok := any(&zero).(Parsable); ok {
		return self[T]()
	}

	return Structured[T](optFns...)
}

// List returns Sequence(Of[E]()).
func List[E any](optFns ...Option) Parser[[]E] {
	return Sequence(Of[E](optFns...), optFns...)
}

// Structured decodes data with the configured codec and validates the
// result against its struct tags.
func Structured[T any](optFns ...Option) Parser[T] {
	opts := applyOpts(optFns)
	target := typeName[T]()
	nullable := acceptsNull[T]()

	return Func[T](func(data []byte) (res result.Result[T]) {
		if len(data) == 0 {
			return result.Failure[T](decodeErr(target, ErrEmptyPayload))
		}

		defer func() {
			if r := recover(); r != nil {
				res = result.Failure[T](decodeErr(target, fmt.Errorf("codec panic: %v", r)))
			}
		}()

		// Decoding through a pointer tells a null payload apart from a
		// present zero value.
		var p *T
		if err := opts.codec.Unmarshal(data, &p); err != nil {
			return result.Failure[T](decodeErr(target, err))
		}

		var v T
		switch {
		case p != nil:
			v = *p
		case !nullable:
			return result.Failure[T](decodeErr(target, ErrNullPayload))
		}

		if !opts.noValidate {
			if err := validate.Struct(v); err != nil {
				return result.Failure[T](decodeErr(target, err))
			}
		}

		return result.Success(v)
	})
}

// Sequence lifts elem to a parser of ordered slices. Elements are decoded
// in source order and the first failure is returned as a DecodeError
// carrying its index and wrapping the element's own error.
func Sequence[E any](elem Parser[E], optFns ...Option) Parser[[]E] {
	opts := applyOpts(optFns)
	target := typeName[[]E]()

	return Func[[]E](func(data []byte) result.Result[[]E] {
		if len(data) == 0 {
			return result.Failure[[]E](decodeErr(target, ErrEmptyPayload))
		}

		raw, err := opts.codec.Split(data)
		if err != nil {
			return result.Failure[[]E](decodeErr(target, err))
		}

		out := make([]E, 0, len(raw))
		for i, chunk := range raw {
			v, err := elem.Parse(chunk).Get()
			if err != nil {
				return result.Failure[[]E](&DecodeError{Target: target, Index: i, Err: err})
			}
			out = append(out, v)
		}

		return result.Success(out)
	})
}

func self[T any]() Parser[T] {
	target := typeName[T]()

	return Func[T](func(data []byte) (res result.Result[T]) {
		if len(data) == 0 {
			return result.Failure[T](decodeErr(target, ErrEmptyPayload))
		}

		defer func() {
			if r := recover(); r != nil {
				res = result.Failure[T](decodeErr(target, fmt.Errorf("parse panic: %v", r)))
			}
		}()

		var v T
		if err := any(&v).(Parsable).ParseBytes(data); err != nil {
			return result.Failure[T](decodeErr(target, err))
		}

		return result.Success(v)
	})
}

// acceptsNull reports whether null is a meaningful value of T.
func acceptsNull[T any]() bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return true
	}
	return false
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
