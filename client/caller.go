package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Call is a single transport-level request.
type Call struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   []byte
}

// Caller is the transport a [Client] hands calls to. Call must return
// without waiting on the network and invoke done once, later, with the
// payload or the failure.
type Caller interface {
	Call(ctx context.Context, call Call, done func(data []byte, err error))
}

// CallerFunc performs a call and blocks until it completes.
type CallerFunc func(ctx context.Context, call Call) ([]byte, error)

// Async returns a [Caller] that runs fn on a new goroutine per call.
func Async(fn CallerFunc) Caller {
	return asyncCaller{fn: fn}
}

type asyncCaller struct {
	fn CallerFunc
}

func (a asyncCaller) Call(ctx context.Context, call Call, done func([]byte, error)) {
	go func() {
		done(a.fn(ctx, call))
	}()
}

// httpCaller performs calls with an *http.Client.
type httpCaller struct {
	c           *http.Client
	logger      *slog.Logger
	statusCheck bool
}

func (h *httpCaller) do(ctx context.Context, call Call) ([]byte, error) {
	var body io.Reader
	if call.Body != nil {
		body = bytes.NewReader(call.Body)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, call.URL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	maps.Copy(req.Header, call.Header)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exec http do: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			h.logger.Error("failed to close response body", "error", err)
		}
	}()

	if h.statusCheck && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return nil, h.statusErr(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return data, nil
}

func (h *httpCaller) statusErr(resp *http.Response) error {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
	if err != nil {
		b = []byte("unable to read body")
	}

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		h.logger.Error("failed to discard unused body", "error", err)
	}

	statusErr := ErrUnexpectedStatusCode
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		statusErr = errors.Join(ErrUnexpectedStatusCode, ErrAuthFailure)
	}

	return &UnexpectedStatusError{
		StatusCode: resp.StatusCode,
		Body:       string(b),
		Err:        statusErr,
	}
}
