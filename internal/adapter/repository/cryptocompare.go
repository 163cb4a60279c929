package repository

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"crypto-price-tracker/internal/domain/ports"
	"crypto-price-tracker/internal/metrics"
	"crypto-price-tracker/pkg/logger"
)

const (
	DefaultBaseURL     = "https://min-api.cryptocompare.com"
	DefaultPacingDelay = 500 * time.Millisecond
)

var ErrNoAssets = errors.New("no assets requested")

// CryptoCompareAPI aggregates current prices and price history from the
// CryptoCompare min-api.
type CryptoCompareAPI struct {
	baseURL     string
	apiKey      string
	fetcher     ports.JSONFetcher
	symbols     *SymbolMapper
	pacingDelay time.Duration
	sleep       SleepFunc
	log         *logger.Logger
	metrics     *metrics.Metrics
}

type APIOption func(*CryptoCompareAPI)

// WithPacing sets the delay between consecutive history requests and the
// function used to wait it out.
func WithPacing(delay time.Duration, sleep SleepFunc) APIOption {
	return func(a *CryptoCompareAPI) {
		a.pacingDelay = delay
		if sleep != nil {
			a.sleep = sleep
		}
	}
}

func NewCryptoCompareAPI(baseURL, apiKey string, fetcher ports.JSONFetcher, symbols *SymbolMapper, log *logger.Logger, m *metrics.Metrics, opts ...APIOption) *CryptoCompareAPI {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if symbols == nil {
		symbols = NewSymbolMapper(DefaultSymbolTable)
	}

	a := &CryptoCompareAPI{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		fetcher:     fetcher,
		symbols:     symbols,
		pacingDelay: DefaultPacingDelay,
		sleep:       sleepContext,
		log:         log,
		metrics:     m,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *CryptoCompareAPI) buildURL(path string, query url.Values) string {
	if a.apiKey != "" {
		query.Set("api_key", a.apiKey)
	}
	return a.baseURL + path + "?" + query.Encode()
}
