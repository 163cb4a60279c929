package service

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"crypto-price-tracker/internal/domain/model"
	"crypto-price-tracker/internal/domain/ports"
	"crypto-price-tracker/internal/metrics"
)

type MockSeriesCache struct {
	GetFunc          func(ctx context.Context, key string) (model.ChartSeries, bool)
	SetFunc          func(ctx context.Context, key string, series model.ChartSeries) error
	ClearExpiredFunc func(ctx context.Context) error
}

func (m *MockSeriesCache) Get(ctx context.Context, key string) (model.ChartSeries, bool) {
	return m.GetFunc(ctx, key)
}

func (m *MockSeriesCache) Set(ctx context.Context, key string, series model.ChartSeries) error {
	return m.SetFunc(ctx, key, series)
}

func (m *MockSeriesCache) ClearExpired(ctx context.Context) error {
	return m.ClearExpiredFunc(ctx)
}

type snapshotCall struct {
	Currency model.Currency
	Assets   []model.AssetID
}

type seriesCall struct {
	Currency model.Currency
	Assets   []model.AssetID
	Period   model.LookbackPeriod
}

// MockPriceRepository records every call and delegates to the Func fields.
type MockPriceRepository struct {
	FetchSnapshotFunc func(ctx context.Context, currency model.Currency, assets []model.AssetID) model.PriceData
	FetchSeriesFunc   func(ctx context.Context, currency model.Currency, assets []model.AssetID, period model.LookbackPeriod, progress ports.ProgressFunc) (model.ChartSeries, error)

	mu            sync.Mutex
	snapshotCalls []snapshotCall
	seriesCalls   []seriesCall
}

func (m *MockPriceRepository) FetchSnapshot(ctx context.Context, currency model.Currency, assets []model.AssetID) model.PriceData {
	m.mu.Lock()
	m.snapshotCalls = append(m.snapshotCalls, snapshotCall{Currency: currency, Assets: assets})
	m.mu.Unlock()

	if m.FetchSnapshotFunc == nil {
		data := make(model.PriceData, len(assets))
		for _, id := range assets {
			data[id] = &model.PriceSnapshot{Price: 100, Change24h: 1}
		}
		return data
	}
	return m.FetchSnapshotFunc(ctx, currency, assets)
}

func (m *MockPriceRepository) FetchSeries(ctx context.Context, currency model.Currency, assets []model.AssetID, period model.LookbackPeriod, progress ports.ProgressFunc) (model.ChartSeries, error) {
	m.mu.Lock()
	m.seriesCalls = append(m.seriesCalls, seriesCall{Currency: currency, Assets: assets, Period: period})
	m.mu.Unlock()

	if m.FetchSeriesFunc == nil {
		return sampleSeries(assets...), nil
	}
	return m.FetchSeriesFunc(ctx, currency, assets, period, progress)
}

func (m *MockPriceRepository) SnapshotCalls() []snapshotCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]snapshotCall(nil), m.snapshotCalls...)
}

func (m *MockPriceRepository) SeriesCalls() []seriesCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]seriesCall(nil), m.seriesCalls...)
}

// manualTicker only fires when a test tells it to.
type manualTicker struct {
	interval time.Duration
	ch       chan time.Time

	mu      sync.Mutex
	stopped bool
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }

func (m *manualTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *manualTicker) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

func (m *manualTicker) Fire() {
	m.ch <- time.Now()
}

type tickerRecorder struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (r *tickerRecorder) New(d time.Duration) Ticker {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticker := &manualTicker{interval: d, ch: make(chan time.Time)}
	r.tickers = append(r.tickers, ticker)
	return ticker
}

func (r *tickerRecorder) All() []*manualTicker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*manualTicker(nil), r.tickers...)
}

func (r *tickerRecorder) Active() int {
	active := 0
	for _, ticker := range r.All() {
		if !ticker.Stopped() {
			active++
		}
	}
	return active
}

func sampleSeries(assets ...model.AssetID) model.ChartSeries {
	values := make(map[model.AssetID]float64, len(assets))
	for i, id := range assets {
		values[id] = float64(100 * (i + 1))
	}
	return model.ChartSeries{
		{Timestamp: "2024-01-01T00:00:00.000Z", Values: values},
	}
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry())
}
