package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig controls retry behavior for one upstream call.
type RetryConfig struct {
	MaxTries int
	Delay    time.Duration // fixed pause between tries
}

// DefaultRetryConfig matches what YouTube tolerates for anonymous sessions.
var DefaultRetryConfig = RetryConfig{
	MaxTries: 5,
	Delay:    20 * time.Second,
}

// RetryConfigFromCfg builds a RetryConfig from the engine configuration,
// falling back to DefaultRetryConfig for unset fields.
func RetryConfigFromCfg() RetryConfig {
	rc := DefaultRetryConfig
	if Cfg.RequestRetries > 0 {
		rc.MaxTries = Cfg.RequestRetries
	}
	if Cfg.RetryDelay > 0 {
		rc.Delay = Cfg.RetryDelay
	}
	return rc
}

// StatusError reports a non-2xx HTTP status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsTerminalStatus reports statuses where retrying is known to be futile.
func IsTerminalStatus(code int) bool {
	return code == http.StatusForbidden || code == http.StatusRequestEntityTooLarge
}

// RetryHTTP executes an HTTP request function with a fixed-delay retry loop.
// Transport errors and non-2xx statuses are retried up to rc.MaxTries;
// 403 and 413 stop immediately. On success the caller owns resp.Body.
func RetryHTTP(ctx context.Context, rc RetryConfig, fn func() (*http.Response, error)) (*http.Response, error) {
	attempt := 0
	operation := func() (*http.Response, error) {
		attempt++
		resp, err := fn()
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			slog.Debug("retrying", slog.Int("attempt", attempt), slog.Any("error", err))
			return nil, err
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		resp.Body.Close()
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		if IsTerminalStatus(resp.StatusCode) {
			return nil, backoff.Permanent(statusErr)
		}
		slog.Debug("retrying", slog.Int("attempt", attempt), slog.Int("status", resp.StatusCode))
		return nil, statusErr
	}

	tries := rc.MaxTries
	if tries <= 0 {
		tries = 1
	}
	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(rc.Delay)),
		backoff.WithMaxTries(uint(tries)),
	)
}
