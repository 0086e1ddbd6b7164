// Package codec provides the structured byte encodings that response parsers
// decode from and request payloads encode to.
package codec

import "errors"

var (
	// ErrNotSequence is returned by Split when the top-level value is not an array.
	ErrNotSequence = errors.New("payload is not a sequence")
	// ErrTrailingData is returned when bytes remain after the first value.
	ErrTrailingData = errors.New("trailing data after value")
)

// Codec turns a self-describing byte encoding into Go values and back.
type Codec interface {
	// ContentType returns the MIME type of the encoding.
	ContentType() string

	// Marshal encodes v.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v, which must be a pointer.
	Unmarshal(data []byte, v any) error

	// Split breaks a top-level sequence into the raw encoding of each
	// element, in source order.
	Split(data []byte) ([][]byte, error)
}

// Default is the codec used when none is configured.
var Default Codec = JSON{}
