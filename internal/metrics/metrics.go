package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	APIAttemptsTotal       *prometheus.CounterVec
	PriceFetchesTotal      prometheus.Counter
	ChartFetchesTotal      *prometheus.CounterVec
	AssetUnavailableTotal  *prometheus.CounterVec
	TimerArmedTotal        prometheus.Counter
	StaleResultsTotal      *prometheus.CounterVec
	SeriesCacheLookupTotal *prometheus.CounterVec
}

// NewMetrics registers every collector with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		APIAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "price_api_attempts_total",
				Help: "Total number of attempts against the remote price API",
			},
			[]string{"endpoint", "outcome"},
		),

		PriceFetchesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "price_fetches_total",
				Help: "Total number of batched current price fetch cycles",
			},
		),

		ChartFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chart_fetches_total",
				Help: "Total number of historical chart fetch cycles",
			},
			[]string{"period"},
		),

		AssetUnavailableTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "asset_unavailable_total",
				Help: "Assets that came back without data in a fetch cycle",
			},
			[]string{"kind", "asset"},
		),

		TimerArmedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "poll_timer_armed_total",
				Help: "Total number of times the price refresh timer was armed",
			},
		),

		StaleResultsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stale_results_discarded_total",
				Help: "Fetch results dropped because newer inputs superseded them",
			},
			[]string{"kind"},
		),

		SeriesCacheLookupTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "series_cache_lookups_total",
				Help: "Series cache lookups by result",
			},
			[]string{"result"},
		),
	}
}
