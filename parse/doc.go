// Package parse turns raw response bytes into typed values.
//
// A [Parser] is bound to the type it produces, so a request that declares
// its response type can only ever be decoded by a parser for that type.
//
// # Strategies
//
// [Structured] decodes a self-describing encoding (JSON unless
// [WithCodec] says otherwise) onto the fields of T and validates its
// struct tags. A field tagged `validate:"required"` that is absent from the
// payload is a decode failure:
//
//	type User struct {
//		Name string `json:"name" validate:"required"`
//	}
//
//	res := parse.Structured[User]().Parse([]byte(`{"name":"Ada"}`))
//
// [Sequence] lifts an element parser to a parser of ordered slices. The
// first element that fails ends the parse and no partial slice is returned.
//
// [Of] picks the strategy for T: the type's own [Parsable] implementation
// when *T has one, [Structured] otherwise. [List] is Sequence over Of.
//
// Every failure is reported as a [*DecodeError] inside the result; parsers
// never panic.
package parse
