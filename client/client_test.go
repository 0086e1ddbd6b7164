package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/adamwoolhether/typedhttp/client"
	"github.com/adamwoolhether/typedhttp/parse"
	"github.com/adamwoolhether/typedhttp/request"
	"github.com/adamwoolhether/typedhttp/result"
)

type user struct {
	Name string `json:"name" validate:"required"`
}

// callerFunc adapts a function to client.Caller without adding a goroutine.
type callerFunc func(ctx context.Context, call client.Call, done func([]byte, error))

func (f callerFunc) Call(ctx context.Context, call client.Call, done func([]byte, error)) {
	f(ctx, call, done)
}

// recorder counts handler invocations and keeps the first result.
type recorder[T any] struct {
	calls atomic.Int32
	once  sync.Once
	first chan result.Result[T]
}

func newRecorder[T any]() *recorder[T] {
	return &recorder[T]{first: make(chan result.Result[T], 1)}
}

func (r *recorder[T]) handle(res result.Result[T]) {
	r.calls.Add(1)
	r.once.Do(func() { r.first <- res })
}

// wait returns the first result and checks that no second one arrives.
func (r *recorder[T]) wait(t *testing.T) result.Result[T] {
	t.Helper()

	var res result.Result[T]
	select {
	case res = <-r.first:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for handler")
	}

	time.Sleep(50 * time.Millisecond)
	if n := r.calls.Load(); n != 1 {
		t.Errorf("exp handler to run once, ran %d times", n)
	}

	return res
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildClient(t *testing.T, opts ...client.Option) *client.Client {
	t.Helper()

	c, err := client.Build(append([]client.Option{client.WithLogger(quietLogger())}, opts...)...)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return c
}

func newRequest[T any](t *testing.T, url string, opts ...request.Option) *request.Normal[T] {
	t.Helper()

	req, err := request.New[T](url, opts...)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	return req
}

func TestSend_EndToEnd(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/user" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"name":"Ada"}`))
	}))
	defer ts.Close()

	c := buildClient(t)
	req := newRequest[user](t, ts.URL+"/user")

	rec := newRecorder[user]()
	client.Send(t.Context(), c, req, rec.handle)

	got, err := rec.wait(t).Get()
	if err != nil {
		t.Fatalf("exp success, got: %v", err)
	}
	if diff := cmp.Diff(user{Name: "Ada"}, got); diff != "" {
		t.Errorf("user mismatch (-want +got):\n%s", diff)
	}
}

func TestSend_ExampleHost(t *testing.T) {
	var gotURL string
	caller := client.Async(func(ctx context.Context, call client.Call) ([]byte, error) {
		gotURL = call.URL.String()
		return []byte(`{"name":"Ada"}`), nil
	})

	c := buildClient(t, client.WithCaller(caller))
	req := newRequest[user](t, "https://example.test/user")

	res := client.Go(t.Context(), c, req).Result()

	got, err := res.Get()
	if err != nil {
		t.Fatalf("exp success, got: %v", err)
	}
	if got.Name != "Ada" {
		t.Errorf("exp Ada, got: %s", got.Name)
	}
	if gotURL != "https://example.test/user" {
		t.Errorf("exp call target unchanged, got: %s", gotURL)
	}
}

func TestSend_MatchesDirectParse(t *testing.T) {
	payload := []byte(`[{"name":"a"},{"name":"b"}]`)
	caller := client.Async(func(context.Context, client.Call) ([]byte, error) {
		return payload, nil
	})

	c := buildClient(t, client.WithCaller(caller))

	req, err := request.NewList[user]("https://example.test/users")
	if err != nil {
		t.Fatal(err)
	}

	rec := newRecorder[[]user]()
	client.Send(t.Context(), c, req, rec.handle)
	got, err := rec.wait(t).Get()
	if err != nil {
		t.Fatalf("exp success, got: %v", err)
	}

	exp, err := parse.List[user]().Parse(payload).Get()
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("send and parse disagree (-parse +send):\n%s", diff)
	}
}

func TestSend_Failures(t *testing.T) {
	errDial := errors.New("dial refused")

	testCases := []struct {
		name   string
		url    string
		caller client.Caller
		expErr error
		check  func(t *testing.T, err error)
	}{
		{
			name:   "Malformed url",
			url:    "://missing-scheme",
			caller: client.Async(func(context.Context, client.Call) ([]byte, error) { return []byte(`{}`), nil }),
			expErr: client.ErrMalformedURL,
			check: func(t *testing.T, err error) {
				var me *client.MalformedURLError
				if !errors.As(err, &me) {
					t.Errorf("exp *MalformedURLError, got: %T", err)
				}
			},
		},
		{
			name:   "Empty url",
			url:    "",
			caller: client.Async(func(context.Context, client.Call) ([]byte, error) { return []byte(`{}`), nil }),
			expErr: client.ErrMalformedURL,
		},
		{
			name:   "Relative url",
			url:    "/user",
			caller: client.Async(func(context.Context, client.Call) ([]byte, error) { return []byte(`{}`), nil }),
			expErr: client.ErrMalformedURL,
		},
		{
			name:   "Transport error",
			url:    "https://example.test/user",
			caller: client.Async(func(context.Context, client.Call) ([]byte, error) { return nil, errDial }),
			expErr: errDial,
			check: func(t *testing.T, err error) {
				var te *client.TransportError
				if !errors.As(err, &te) {
					t.Fatalf("exp *TransportError, got: %T", err)
				}
				if te.Method != "GET" || te.URL != "https://example.test/user" {
					t.Errorf("unexpected transport error fields: %+v", te)
				}
			},
		},
		{
			name:   "Transport error with payload",
			url:    "https://example.test/user",
			caller: client.Async(func(context.Context, client.Call) ([]byte, error) { return []byte(`{"name":"Ada"}`), errDial }),
			expErr: errDial,
		},
		{
			name:   "Neither payload nor error",
			url:    "https://example.test/user",
			caller: client.Async(func(context.Context, client.Call) ([]byte, error) { return nil, nil }),
			expErr: client.ErrEmptyResponse,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, client.ErrTransport) {
					t.Errorf("exp empty response to be a transport error, got: %v", err)
				}
			},
		},
		{
			name:   "Zero length payload",
			url:    "https://example.test/user",
			caller: client.Async(func(context.Context, client.Call) ([]byte, error) { return []byte{}, nil }),
			expErr: client.ErrEmptyResponse,
		},
		{
			name:   "Decode failure",
			url:    "https://example.test/user",
			caller: client.Async(func(context.Context, client.Call) ([]byte, error) { return []byte(`{"name":1}`), nil }),
			expErr: parse.ErrDecode,
		},
		{
			name:   "Missing required field",
			url:    "https://example.test/user",
			caller: client.Async(func(context.Context, client.Call) ([]byte, error) { return []byte(`{}`), nil }),
			expErr: parse.ErrDecode,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := buildClient(t, client.WithCaller(tc.caller))
			req := newRequest[user](t, tc.url)

			rec := newRecorder[user]()
			client.Send(t.Context(), c, req, rec.handle)

			got, err := rec.wait(t).Get()
			if !errors.Is(err, tc.expErr) {
				t.Fatalf("exp err %v, got: %v", tc.expErr, err)
			}
			if got != (user{}) {
				t.Errorf("exp zero value on failure, got: %+v", got)
			}
			if tc.check != nil {
				tc.check(t, err)
			}
		})
	}
}

func TestSend_DuplicateCompletionDropped(t *testing.T) {
	caller := callerFunc(func(_ context.Context, _ client.Call, done func([]byte, error)) {
		go func() {
			done([]byte(`{"name":"first"}`), nil)
			done([]byte(`{"name":"second"}`), nil)
			done(nil, errors.New("third"))
		}()
	})

	c := buildClient(t, client.WithCaller(caller))
	req := newRequest[user](t, "https://example.test/user")

	rec := newRecorder[user]()
	client.Send(t.Context(), c, req, rec.handle)

	got, err := rec.wait(t).Get()
	if err != nil {
		t.Fatalf("exp success, got: %v", err)
	}
	if got.Name != "first" {
		t.Errorf("exp first completion to win, got: %s", got.Name)
	}
}

func TestSend_ReturnsBeforeHandler(t *testing.T) {
	release := make(chan struct{})
	caller := client.Async(func(context.Context, client.Call) ([]byte, error) {
		<-release
		return []byte(`{"name":"Ada"}`), nil
	})

	c := buildClient(t, client.WithCaller(caller))
	req := newRequest[user](t, "https://example.test/user")

	rec := newRecorder[user]()
	client.Send(t.Context(), c, req, rec.handle)

	if n := rec.calls.Load(); n != 0 {
		t.Fatalf("exp handler not to have run yet, ran %d times", n)
	}

	close(release)

	if err := rec.wait(t).Err(); err != nil {
		t.Errorf("exp success, got: %v", err)
	}
}

func TestSend_MalformedURLHandlerIsAsync(t *testing.T) {
	c := buildClient(t, client.WithCaller(client.Async(func(context.Context, client.Call) ([]byte, error) {
		t.Error("caller must not be invoked for a malformed url")
		return nil, nil
	})))
	req := newRequest[user](t, "not a url")

	var mu sync.Mutex
	mu.Lock()
	done := make(chan error, 1)
	client.Send(t.Context(), c, req, func(res result.Result[user]) {
		mu.Lock()
		defer mu.Unlock()
		done <- res.Err()
	})
	mu.Unlock()

	select {
	case err := <-done:
		if !errors.Is(err, client.ErrMalformedURL) {
			t.Errorf("exp ErrMalformedURL, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for handler")
	}
}

func TestSend_CancellationNotPropagated(t *testing.T) {
	ctxErr := make(chan error, 1)
	caller := client.Async(func(ctx context.Context, _ client.Call) ([]byte, error) {
		time.Sleep(20 * time.Millisecond)
		ctxErr <- ctx.Err()
		return []byte(`{"name":"Ada"}`), nil
	})

	c := buildClient(t, client.WithCaller(caller))
	req := newRequest[user](t, "https://example.test/user")

	ctx, cancel := context.WithCancel(t.Context())
	p := client.Go(ctx, c, req)
	cancel()

	if err := p.Result().Err(); err != nil {
		t.Errorf("exp success despite cancelled context, got: %v", err)
	}
	if err := <-ctxErr; err != nil {
		t.Errorf("exp transport context to stay live, got: %v", err)
	}
}

func TestSend_Concurrent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"` + r.URL.Query().Get("n") + `"}`))
	}))
	defer ts.Close()

	c := buildClient(t)

	const n = 25
	pending := make([]*client.Pending[user], n)
	for i := range n {
		req := newRequest[user](t, ts.URL, request.WithParam("n", i))
		pending[i] = client.Go(t.Context(), c, req)
	}

	for i, p := range pending {
		got, err := p.Result().Get()
		if err != nil {
			t.Errorf("request %d failed: %v", i, err)
			continue
		}
		if exp := strconv.Itoa(i); got.Name != exp {
			t.Errorf("request %d: exp name %q, got %q", i, exp, got.Name)
		}
	}
}

func TestSend_WireFormat(t *testing.T) {
	type captured struct {
		method string
		query  string
		body   string
		header http.Header
	}
	seen := make(chan captured, 1)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seen <- captured{method: r.Method, query: r.URL.RawQuery, body: string(b), header: r.Header.Clone()}
		w.Write([]byte(`{"name":"ok"}`))
	}))
	defer ts.Close()

	c := buildClient(t)
	req := newRequest[user](t, ts.URL+"/users",
		request.WithMethod(request.POST),
		request.WithParam("b", "2"),
		request.WithParam("a", 1),
		request.WithHeader("x-custom", "yes"),
		request.WithBody([]byte(`{"name":"new"}`)),
	)

	if err := client.Go(t.Context(), c, req).Result().Err(); err != nil {
		t.Fatalf("exp success, got: %v", err)
	}

	got := <-seen
	if got.method != http.MethodPost {
		t.Errorf("exp POST, got: %s", got.method)
	}
	if got.query != "b=2&a=1" {
		t.Errorf("exp query in insertion order, got: %s", got.query)
	}
	if got.body != `{"name":"new"}` {
		t.Errorf("exp body forwarded, got: %s", got.body)
	}
	if got.header.Get("X-Custom") != "yes" {
		t.Errorf("exp custom header, got: %v", got.header)
	}
}

func TestSend_NoCustomHeaders(t *testing.T) {
	var gotHeader http.Header = http.Header{"Sentinel": {"x"}}
	caller := client.Async(func(_ context.Context, call client.Call) ([]byte, error) {
		gotHeader = call.Header
		return []byte(`{"name":"Ada"}`), nil
	})

	c := buildClient(t, client.WithCaller(caller))
	req := newRequest[user](t, "https://example.test/user")

	if err := client.Go(t.Context(), c, req).Result().Err(); err != nil {
		t.Fatalf("exp success, got: %v", err)
	}
	if gotHeader != nil {
		t.Errorf("exp nil header set, got: %v", gotHeader)
	}
}

func TestSend_StatusCheck(t *testing.T) {
	testCases := []struct {
		name        string
		status      int
		statusCheck bool
		expErr      error
		expName     string
	}{
		{
			name:    "Non-2xx parsed when unchecked",
			status:  http.StatusNotFound,
			expName: "missing",
		},
		{
			name:        "Not found",
			status:      http.StatusNotFound,
			statusCheck: true,
			expErr:      client.ErrUnexpectedStatusCode,
		},
		{
			name:        "Unauthorized",
			status:      http.StatusUnauthorized,
			statusCheck: true,
			expErr:      client.ErrAuthFailure,
		},
		{
			name:        "OK",
			status:      http.StatusOK,
			statusCheck: true,
			expName:     "missing",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"name":"missing"}`))
			}))
			defer ts.Close()

			var opts []client.Option
			if tc.statusCheck {
				opts = append(opts, client.WithStatusCheck())
			}
			c := buildClient(t, opts...)

			got, err := client.Go(t.Context(), c, newRequest[user](t, ts.URL)).Result().Get()
			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Fatalf("exp err %v, got: %v", tc.expErr, err)
				}
				var se *client.UnexpectedStatusError
				if !errors.As(err, &se) {
					t.Fatalf("exp *UnexpectedStatusError, got: %T", err)
				}
				if se.StatusCode != tc.status || se.Body != `{"name":"missing"}` {
					t.Errorf("unexpected status error fields: %+v", se)
				}
				return
			}

			if err != nil {
				t.Fatalf("exp success, got: %v", err)
			}
			if got.Name != tc.expName {
				t.Errorf("exp name %q, got: %q", tc.expName, got.Name)
			}
		})
	}
}

func TestSend_NoContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := buildClient(t)

	err := client.Go(t.Context(), c, newRequest[user](t, ts.URL)).Result().Err()
	if !errors.Is(err, client.ErrEmptyResponse) {
		t.Errorf("exp ErrEmptyResponse, got: %v", err)
	}
}

func TestSend_UnreachableHost(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := buildClient(t, client.WithTimeout(2*time.Second))

	err := client.Go(t.Context(), c, newRequest[user](t, url)).Result().Err()
	if !errors.Is(err, client.ErrTransport) {
		t.Errorf("exp ErrTransport, got: %v", err)
	}
}

func TestSend_UserAgentAndRequestID(t *testing.T) {
	const expectedUA = "TestUserAgent/1.0"

	testCases := []struct {
		name      string
		header    string
		preset    string
		expHeader string
	}{
		{
			name:      "Default header",
			expHeader: client.DefaultRequestIDHeader,
		},
		{
			name:      "Custom header",
			header:    "X-Correlation-ID",
			expHeader: "X-Correlation-ID",
		},
		{
			name:      "Preset id kept",
			preset:    "caller-chosen",
			expHeader: client.DefaultRequestIDHeader,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seen := make(chan http.Header, 1)
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen <- r.Header.Clone()
				w.Write([]byte(`{"name":"Ada"}`))
			}))
			defer ts.Close()

			c := buildClient(t,
				client.WithRequestID(tc.header),
				client.WithUserAgent(expectedUA),
				client.WithThrottle(100, 10),
			)

			var opts []request.Option
			if tc.preset != "" {
				opts = append(opts, request.WithHeader(tc.expHeader, tc.preset))
			}

			if err := client.Go(t.Context(), c, newRequest[user](t, ts.URL, opts...)).Result().Err(); err != nil {
				t.Fatalf("exp success, got: %v", err)
			}

			hdr := <-seen
			if ua := hdr.Get("User-Agent"); ua != expectedUA {
				t.Errorf("expected User-Agent %q, got %q", expectedUA, ua)
			}

			id := hdr.Get(tc.expHeader)
			if tc.preset != "" {
				if id != tc.preset {
					t.Errorf("exp preset id %q, got %q", tc.preset, id)
				}
				return
			}
			if _, err := uuid.Parse(id); err != nil {
				t.Errorf("exp uuid in %s, got %q: %v", tc.expHeader, id, err)
			}
		})
	}
}

func TestSend_NilHandlerPanics(t *testing.T) {
	c := buildClient(t)

	defer func() {
		if recover() == nil {
			t.Error("exp panic for nil handler")
		}
	}()

	client.Send(t.Context(), c, newRequest[user](t, "https://example.test"), nil)
}

func TestBuild_Errors(t *testing.T) {
	testCases := []struct {
		name string
		opt  client.Option
	}{
		{name: "Nil client", opt: client.WithClient(nil)},
		{name: "Nil transport", opt: client.WithTransport(nil)},
		{name: "Nil caller", opt: client.WithCaller(nil)},
		{name: "Negative timeout", opt: client.WithTimeout(-time.Second)},
		{name: "Zero throttle", opt: client.WithThrottle(0, 1)},
		{name: "Nil registerer", opt: client.WithMetrics(nil)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := client.Build(tc.opt); err == nil {
				t.Error("exp error, got nil")
			}
		})
	}
}

func TestBuild_NoFollowRedirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			w.Write([]byte(`{"name":"followed"}`))
			return
		}
		w.Header().Set("Location", "/final")
		w.WriteHeader(http.StatusFound)
		w.Write([]byte(`{"name":"redirect"}`))
	}))
	defer ts.Close()

	testCases := []struct {
		name    string
		opts    []client.Option
		expName string
	}{
		{name: "Follows by default", expName: "followed"},
		{name: "Stops at redirect", opts: []client.Option{client.WithNoFollowRedirects()}, expName: "redirect"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := buildClient(t, tc.opts...)

			got, err := client.Go(t.Context(), c, newRequest[user](t, ts.URL+"/start")).Result().Get()
			if err != nil {
				t.Fatalf("exp success, got: %v", err)
			}
			if got.Name != tc.expName {
				t.Errorf("exp %q, got %q", tc.expName, got.Name)
			}
		})
	}
}

func TestBuild_WithTransport(t *testing.T) {
	var used atomic.Bool
	rt := roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		used.Store(true)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"name":"stub"}`)),
			Header:     make(http.Header),
			Request:    r,
		}, nil
	})

	c := buildClient(t, client.WithTransport(rt))

	got, err := client.Go(t.Context(), c, newRequest[user](t, "https://example.test")).Result().Get()
	if err != nil {
		t.Fatalf("exp success, got: %v", err)
	}
	if !used.Load() || got.Name != "stub" {
		t.Errorf("exp custom transport to serve the call, got %+v", got)
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
