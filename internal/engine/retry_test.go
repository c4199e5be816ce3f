package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newStatusServer(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		code := statuses[len(statuses)-1]
		if n < len(statuses) {
			code = statuses[n]
		}
		w.WriteHeader(code)
		_, _ = w.Write([]byte("{}"))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func get(ctx context.Context, url string) func() (*http.Response, error) {
	return func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		return http.DefaultClient.Do(req)
	}
}

var fastRetry = RetryConfig{MaxTries: 3, Delay: time.Millisecond}

func TestRetryHTTPSuccess(t *testing.T) {
	srv, calls := newStatusServer(t, 200)
	ctx := context.Background()

	resp, err := RetryHTTP(ctx, fastRetry, get(ctx, srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestRetryHTTPRetryThenSuccess(t *testing.T) {
	srv, calls := newStatusServer(t, 503, 500, 200)
	ctx := context.Background()

	resp, err := RetryHTTP(ctx, fastRetry, get(ctx, srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestRetryHTTPExhausted(t *testing.T) {
	srv, calls := newStatusServer(t, 502)
	ctx := context.Background()

	_, err := RetryHTTP(ctx, fastRetry, get(ctx, srv.URL))
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != 502 {
		t.Fatalf("expected StatusError 502, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestRetryHTTPTerminalStatus(t *testing.T) {
	for _, code := range []int{403, 413} {
		srv, calls := newStatusServer(t, code)
		ctx := context.Background()

		_, err := RetryHTTP(ctx, fastRetry, get(ctx, srv.URL))
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != code {
			t.Fatalf("status %d: expected StatusError, got %v", code, err)
		}
		if calls.Load() != 1 {
			t.Errorf("status %d: expected 1 call (no retry), got %d", code, calls.Load())
		}
	}
}

func TestRetryHTTPContextCanceled(t *testing.T) {
	srv, _ := newStatusServer(t, 503)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RetryHTTP(ctx, fastRetry, get(ctx, srv.URL))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsTerminalStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{403, true},
		{413, true},
		{429, false},
		{500, false},
		{404, false},
	}
	for _, tt := range tests {
		if got := IsTerminalStatus(tt.code); got != tt.want {
			t.Errorf("IsTerminalStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
