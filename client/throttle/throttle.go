package throttle

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// limiter is an http.RoundTripper that waits for a token from a
// shared bucket before every outbound call.
type limiter struct {
	bucket *rate.Limiter
	cfg    Config
	next   http.RoundTripper
	logFn  func() *slog.Logger
}

// New wraps next so that calls are admitted at cfg.RPS with bursts of up
// to cfg.Burst. logFn is resolved per call, so the logger can be set after
// the transport is built; a nil logger disables wait logging.
func New(cfg Config, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if next == nil {
		next = http.DefaultTransport
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	return &limiter{
		bucket: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		cfg:    cfg,
		next:   next,
		logFn:  logFn,
	}, nil
}

func (l *limiter) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	if l.bucket.Allow() {
		return l.next.RoundTrip(r)
	}

	logger := l.logFn()
	if logger != nil {
		logger.Info("throttle tokens exhausted", "rate", l.cfg.RPS, "burst", l.cfg.Burst, "host", r.URL.Host)
	}

	start := time.Now()
	if err := l.bucket.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if logger != nil {
		logger.Info("throttle wait complete", "waited", time.Since(start).String(), "host", r.URL.Host)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	return l.next.RoundTrip(r)
}
