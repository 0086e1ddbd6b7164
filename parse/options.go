package parse

import (
	"github.com/adamwoolhether/typedhttp/codec"
)

// Option configures the built-in parsing strategies.
type Option func(*options)

type options struct {
	codec      codec.Codec
	noValidate bool
}

func applyOpts(optFns []Option) options {
	opts := options{codec: codec.Default}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.codec == nil {
		opts.codec = codec.Default
	}

	return opts
}

// WithCodec decodes with c instead of [codec.Default].
func WithCodec(c codec.Codec) Option {
	return func(opts *options) {
		opts.codec = c
	}
}

// WithoutValidation skips struct tag validation after decoding.
func WithoutValidation() Option {
	return func(opts *options) {
		opts.noValidate = true
	}
}
