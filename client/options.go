package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/typedhttp/client/throttle"
)

// DefaultRequestIDHeader is the header [WithRequestID] sets when given an
// empty name.
const DefaultRequestIDHeader = "X-Request-ID"

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	caller            Caller
	timeout           *time.Duration
	userAgent         string
	requestID         string
	throttle          *throttle.Config
	noFollowRedirects bool
	statusCheck       bool
	logger            *slog.Logger
	tracer            trace.Tracer
	registerer        prometheus.Registerer
}

// WithClient replaces the [http.Client] used by the default transport.
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithCaller replaces the HTTP transport entirely. Options that shape the
// HTTP transport are ignored when a Caller is set.
func WithCaller(caller Caller) Option {
	return func(c *options) error {
		if caller == nil {
			return errors.New("caller must not be nil")
		}
		c.caller = caller
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithRequestID stamps every outgoing request with a random UUID in the
// named header, unless the request already carries one.
func WithRequestID(header string) Option {
	return func(c *options) error {
		if header == "" {
			header = DefaultRequestIDHeader
		}
		c.requestID = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		cfg := throttle.Config{RPS: rps, Burst: burst}
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.throttle = &cfg
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithStatusCheck reports responses outside the 2xx range as a
// [TransportError] wrapping [UnexpectedStatusError] instead of parsing them.
func WithStatusCheck() Option {
	return func(c *options) error {
		c.statusCheck = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithTracer records a client span per [Send] with the given tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		c.tracer = tracer
		return nil
	}
}

// WithMetrics registers the client's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *options) error {
		if reg == nil {
			return errors.New("registerer must not be nil")
		}
		c.registerer = reg
		return nil
	}
}

// WithConfig applies a [Config], typically loaded with [LoadConfig].
func WithConfig(cfg Config) Option {
	return func(c *options) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		if cfg.Timeout > 0 {
			c.timeout = &cfg.Timeout
		}
		if cfg.UserAgent != "" {
			c.userAgent = cfg.UserAgent
		}
		if cfg.RequestIDHeader != "" {
			c.requestID = cfg.RequestIDHeader
		}
		if cfg.Throttle != nil {
			t := *cfg.Throttle
			c.throttle = &t
		}
		c.noFollowRedirects = c.noFollowRedirects || cfg.NoFollowRedirects
		c.statusCheck = c.statusCheck || cfg.StatusCheck

		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// requestID is an http.RoundTripper that tags each request with a UUID.
type requestID struct {
	header string
	base   http.RoundTripper
}

func (rid requestID) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get(rid.header) != "" {
		return rid.base.RoundTrip(r)
	}

	cpy := r.Clone(r.Context())
	cpy.Header.Set(rid.header, uuid.NewString())
	return rid.base.RoundTrip(cpy)
}
