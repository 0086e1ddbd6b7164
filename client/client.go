package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/typedhttp/client/throttle"
	"github.com/adamwoolhether/typedhttp/request"
	"github.com/adamwoolhether/typedhttp/result"
)

// Client sends typed requests through a [Caller]. By default the Caller
// is backed by a fresh *http.Client whose transport can be customized via
// optional funcs. A Client is safe for concurrent use.
type Client struct {
	caller  Caller
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *metrics
}

func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer(""),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.registerer != nil {
		m, err := newMetrics(opts.registerer)
		if err != nil {
			return nil, err
		}
		client.metrics = m
	}

	if opts.caller != nil {
		client.caller = opts.caller
		return client, nil
	}

	hc, err := httpClient(opts, func() *slog.Logger { return client.logger })
	if err != nil {
		return nil, err
	}

	hcaller := &httpCaller{c: hc, logger: client.logger, statusCheck: opts.statusCheck}
	client.caller = Async(hcaller.do)

	return client, nil
}

// httpClient assembles the *http.Client and its RoundTripper chain.
func httpClient(opts options, logFn func() *slog.Logger) (*http.Client, error) {
	hc := &http.Client{}
	if opts.client != nil {
		hc = opts.client
	}

	if opts.timeout != nil {
		hc.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case hc.Transport != nil:
		transport = hc.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.requestID != "" {
		transport = requestID{header: opts.requestID, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.New(*opts.throttle, logFn, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	hc.Transport = transport

	return hc, nil
}

// Send dispatches req and returns without waiting for it. handler is
// invoked exactly once, from a goroutine other than the caller's, with
// the request's parsed response or the failure that prevented it.
//
// ctx supplies values such as the parent span; its cancellation and
// deadline are not propagated. Send panics if handler is nil.
func Send[T any](ctx context.Context, c *Client, req request.Request[T], handler Handler[T]) {
	if handler == nil {
		panic("client: nil handler")
	}

	method := req.Method().String()

	ctx, span := c.tracer.Start(context.WithoutCancel(ctx), "client.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", req.URL()),
		),
	)

	start := time.Now()
	c.metrics.started()

	var fired atomic.Bool
	finish := func(res result.Result[T], outcome string) {
		if !fired.CompareAndSwap(false, true) {
			c.logger.Error("dropped duplicate completion", "method", method, "url", req.URL(), "outcome", outcome)
			return
		}

		c.metrics.finished(method, outcome, time.Since(start))

		if err := res.Err(); err != nil {
			c.logger.Warn("request failed", "method", method, "url", req.URL(), "outcome", outcome, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.SetAttributes(attribute.String("typedhttp.outcome", outcome))
		span.End()

		handler(res)
	}

	target, err := Target(req)
	if err != nil {
		go finish(result.Failure[T](err), outcomeMalformedURL)
		return
	}

	call := Call{
		Method: method,
		URL:    target,
		Header: header(req.Headers()),
		Body:   req.Body(),
	}

	c.logger.Debug("dispatching request", "method", method, "url", target.Redacted())

	c.caller.Call(ctx, call, func(data []byte, err error) {
		switch {
		case err != nil:
			finish(result.Failure[T](&TransportError{Method: method, URL: target.Redacted(), Err: err}), outcomeTransport)

		case len(data) == 0:
			finish(result.Failure[T](&TransportError{Method: method, URL: target.Redacted(), Err: ErrEmptyResponse}), outcomeEmpty)

		default:
			res := req.Parser().Parse(data)
			outcome := outcomeSuccess
			if !res.IsSuccess() {
				outcome = outcomeDecode
			}
			finish(res, outcome)
		}
	})
}

// header converts request headers to their wire form with canonical keys.
// Nil stays nil.
func header(h request.Headers) http.Header {
	if h == nil {
		return nil
	}

	hdr := make(http.Header, len(h))
	for k, v := range h {
		hdr.Set(k, v)
	}

	return hdr
}

// Pending is an in-flight [Go] call.
type Pending[T any] struct {
	done chan struct{}
	res  result.Result[T]
}

// Go sends req like [Send] and returns a Pending that completes when the
// response has been parsed.
func Go[T any](ctx context.Context, c *Client, req request.Request[T]) *Pending[T] {
	p := &Pending[T]{done: make(chan struct{})}

	Send(ctx, c, req, func(res result.Result[T]) {
		p.res = res
		close(p.done)
	})

	return p
}

// Done returns a channel that is closed when the result is available.
func (p *Pending[T]) Done() <-chan struct{} { return p.done }

// Result blocks until the call completes and returns its outcome.
func (p *Pending[T]) Result() result.Result[T] {
	<-p.done
	return p.res
}
