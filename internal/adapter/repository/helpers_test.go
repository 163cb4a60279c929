package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"crypto-price-tracker/internal/metrics"
	"crypto-price-tracker/pkg/logger"
)

// sleepRecorder records requested waits without blocking.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

// requestLog captures every request the fake API receives.
type requestLog struct {
	mu       sync.Mutex
	requests []*url.URL
}

func (r *requestLog) add(u *url.URL) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *u
	r.requests = append(r.requests, &copied)
}

func (r *requestLog) All() []*url.URL {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*url.URL(nil), r.requests...)
}

type testEnv struct {
	api      *CryptoCompareAPI
	fetcher  *RetryingFetcher
	requests *requestLog
	backoff  *sleepRecorder
	pacing   *sleepRecorder
}

func newTestEnv(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()

	env := &testEnv{
		requests: &requestLog{},
		backoff:  &sleepRecorder{},
		pacing:   &sleepRecorder{},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.requests.add(r.URL)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	log := logger.NewNopLogger()
	m := metrics.NewMetrics(prometheus.NewRegistry())

	env.fetcher = NewRetryingFetcher(server.Client(), RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}, log, m, WithSleep(env.backoff.Sleep))
	env.api = NewCryptoCompareAPI(server.URL, "", env.fetcher, NewSymbolMapper(DefaultSymbolTable), log, m, WithPacing(DefaultPacingDelay, env.pacing.Sleep))
	return env
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}
