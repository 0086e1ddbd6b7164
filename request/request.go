package request

import (
	"bytes"
	"fmt"

	"github.com/adamwoolhether/typedhttp/parse"
)

// Descriptor is the untyped part of a request: everything needed to put it
// on the wire.
type Descriptor interface {
	URL() string
	Method() Method
	Parameters() Params
	Headers() Headers
	Body() []byte
}

// Request is a Descriptor bound to the type T its response decodes into.
type Request[T any] interface {
	Descriptor
	Parser() parse.Parser[T]
}

// Normal is the stock [Request] implementation.
type Normal[T any] struct {
	url     string
	method  Method
	params  Params
	headers Headers
	body    []byte
	parser  parse.Parser[T]
}

// New builds a request to url whose response decodes into T. The method
// defaults to GET and the parser to [parse.Of] for T. url is not checked
// here; a malformed url is reported when the request is sent.
func New[T any](url string, optFns ...Option) (*Normal[T], error) {
	return build(url, parse.Of[T](), optFns)
}

// NewList builds a request whose response is an ordered sequence of E,
// parsed element by element with [parse.List].
func NewList[E any](url string, optFns ...Option) (*Normal[[]E], error) {
	return build(url, parse.List[E](), optFns)
}

// NewWithParser builds a request whose response is decoded by p.
func NewWithParser[T any](p parse.Parser[T], url string, optFns ...Option) (*Normal[T], error) {
	if p == nil {
		return nil, ErrNilParser
	}
	return build(url, p, optFns)
}

func build[T any](url string, parser parse.Parser[T], optFns []Option) (*Normal[T], error) {
	opts := options{method: GET}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying request option: %w", err)
		}
	}

	return &Normal[T]{
		url:     url,
		method:  opts.method,
		params:  opts.params,
		headers: opts.headers,
		body:    opts.body,
		parser:  parser,
	}, nil
}

func (r *Normal[T]) URL() string             { return r.url }
func (r *Normal[T]) Method() Method          { return r.method }
func (r *Normal[T]) Parameters() Params      { return r.params.Clone() }
func (r *Normal[T]) Headers() Headers        { return r.headers.Clone() }
func (r *Normal[T]) Body() []byte            { return bytes.Clone(r.body) }
func (r *Normal[T]) Parser() parse.Parser[T] { return r.parser }
