package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crypto-price-tracker/internal/metrics"
	"crypto-price-tracker/pkg/logger"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

var errInvalidJSON = errors.New("response body is not valid JSON")

// HTTPStatusError reports a non-2xx response from the remote API.
type HTTPStatusError struct {
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Delay is the wait before the given 1-based attempt: nothing before the first,
// then BaseDelay doubling on every further attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	return p.BaseDelay << (attempt - 2)
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RetryingFetcher issues GET requests with bounded, sequential retries.
type RetryingFetcher struct {
	httpClient *http.Client
	policy     RetryPolicy
	sleep      SleepFunc
	log        *logger.Logger
	metrics    *metrics.Metrics
}

type FetcherOption func(*RetryingFetcher)

// WithSleep replaces the backoff wait, mostly so tests can record delays.
func WithSleep(sleep SleepFunc) FetcherOption {
	return func(f *RetryingFetcher) {
		f.sleep = sleep
	}
}

func NewRetryingFetcher(httpClient *http.Client, policy RetryPolicy, log *logger.Logger, m *metrics.Metrics, opts ...FetcherOption) *RetryingFetcher {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = DefaultMaxAttempts
	}
	if policy.BaseDelay < 0 {
		policy.BaseDelay = DefaultBaseDelay
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	f := &RetryingFetcher{
		httpClient: httpClient,
		policy:     policy,
		sleep:      sleepContext,
		log:        log,
		metrics:    m,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the body of the first successful attempt. When every attempt
// fails, only the last error is returned.
func (f *RetryingFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	endpoint := endpointLabel(rawURL)

	var lastErr error
	for attempt := 1; attempt <= f.policy.MaxAttempts; attempt++ {
		if delay := f.policy.Delay(attempt); delay > 0 {
			f.log.Debug("Waiting before retry", "endpoint", endpoint, "attempt", attempt, "delay", delay)
			if err := f.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		body, err := f.attempt(ctx, rawURL)
		if err == nil {
			f.metrics.APIAttemptsTotal.WithLabelValues(endpoint, "success").Inc()
			return body, nil
		}

		f.metrics.APIAttemptsTotal.WithLabelValues(endpoint, "failure").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		f.log.Debug("Fetch attempt failed",
			"endpoint", endpoint,
			"attempt", attempt,
			"max_attempts", f.policy.MaxAttempts,
			"error", err,
		)
		lastErr = err
	}

	return nil, fmt.Errorf("fetch failed after %d attempts: %w", f.policy.MaxAttempts, lastErr)
}

func (f *RetryingFetcher) attempt(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if !json.Valid(body) {
		return nil, errInvalidJSON
	}
	return body, nil
}

// statusText is the server's reason phrase, or the standard one when the
// response carries none.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		return http.StatusText(resp.StatusCode)
	}
	return text
}

func endpointLabel(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	return parsed.Path
}
