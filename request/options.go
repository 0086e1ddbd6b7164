package request

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/adamwoolhether/typedhttp/codec"
)

// Option is a functional option for [New] and [NewList].
type Option func(*options) error

type options struct {
	method  Method
	params  Params
	headers Headers
	body    []byte
}

// WithMethod sets the HTTP verb.
func WithMethod(m Method) Option {
	return func(opts *options) error {
		if !m.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidMethod, m)
		}
		opts.method = m
		return nil
	}
}

// WithParam appends one query parameter.
func WithParam(key string, value any) Option {
	return func(opts *options) error {
		if key == "" {
			return errors.New("param key must not be empty")
		}
		opts.params = append(opts.params, Param{Key: key, Value: value})
		return nil
	}
}

// WithParams appends the given query parameters in order.
func WithParams(params ...Param) Option {
	return func(opts *options) error {
		for _, p := range params {
			if p.Key == "" {
				return errors.New("param key must not be empty")
			}
		}
		opts.params = append(opts.params, params...)
		return nil
	}
}

// WithHeader sets a single header.
func WithHeader(key, value string) Option {
	return func(opts *options) error {
		if key == "" {
			return errors.New("header key must not be empty")
		}
		opts.setHeader(key, value)
		return nil
	}
}

// WithHeaders merges headers into the request's header set. Keys that
// differ only in case must not both appear in headers. A nil or empty map
// leaves the header set unchanged.
func WithHeaders(headers Headers) Option {
	return func(opts *options) error {
		seen := make(map[string]string, len(headers))
		for k := range headers {
			if k == "" {
				return errors.New("header key must not be empty")
			}
			canon := http.CanonicalHeaderKey(k)
			if prev, ok := seen[canon]; ok {
				return fmt.Errorf("%w: %q and %q", ErrDuplicateHeader, prev, k)
			}
			seen[canon] = k
		}

		for k, v := range headers {
			opts.setHeader(k, v)
		}
		return nil
	}
}

// setHeader sets key, replacing any existing key that differs only in case.
func (opts *options) setHeader(key, value string) {
	if opts.headers == nil {
		opts.headers = make(Headers)
	}

	canon := http.CanonicalHeaderKey(key)
	for k := range opts.headers {
		if k != key && http.CanonicalHeaderKey(k) == canon {
			delete(opts.headers, k)
		}
	}
	opts.headers[key] = value
}

// WithBody sets the raw request body.
func WithBody(body []byte) Option {
	return func(opts *options) error {
		opts.body = bytes.Clone(body)
		return nil
	}
}

// WithPayload encodes v with c as the request body and sets the
// Content-Type header to the codec's type.
func WithPayload(c codec.Codec, v any) Option {
	return func(opts *options) error {
		if c == nil {
			return errors.New("codec must not be nil")
		}

		b, err := c.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding request payload: %w", err)
		}

		opts.body = b
		opts.setHeader("Content-Type", c.ContentType())

		return nil
	}
}
