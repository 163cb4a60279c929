package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"crypto-price-tracker/internal/domain/model"
	"crypto-price-tracker/internal/domain/ports"
	"crypto-price-tracker/internal/metrics"
	"crypto-price-tracker/pkg/logger"
)

const (
	statusFetchingPrices = "Fetching current prices..."

	errPriceFetch = "Failed to fetch price data"
	errChartFetch = "Failed to fetch chart data"
)

var ErrTrackerClosed = errors.New("tracker closed")

type PollState int

const (
	Idle PollState = iota
	Polling
)

func (s PollState) String() string {
	if s == Polling {
		return "polling"
	}
	return "idle"
}

// Ticker is the recurring timer driving automatic price refreshes.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(d time.Duration) Ticker

type timeTicker struct {
	ticker *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.ticker.C }
func (t timeTicker) Stop()               { t.ticker.Stop() }

func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{ticker: time.NewTicker(d)}
}

type pollTimer struct {
	ticker Ticker
	stop   chan struct{}
}

// Tracker owns the refresh lifecycle for one currency and asset selection:
// immediate fetches whenever the inputs change, plus an optional recurring
// price refresh. Results from fetches started under superseded inputs are
// dropped.
type Tracker struct {
	prices    ports.SnapshotFetcher
	series    ports.SeriesFetcher
	newTicker TickerFactory
	log       *logger.Logger
	metrics   *metrics.Metrics

	// fetches run on this context so a timer teardown never aborts them
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	started    bool
	closed     bool
	state      PollState
	timer      *pollTimer
	currency   model.Currency
	assets     []model.AssetID
	poll       model.PollConfig
	period     model.LookbackPeriod
	generation uint64
	priceSeq   uint64
	chartSeq   uint64
	inFlight   int

	priceData     model.PriceData
	chartData     model.ChartSeries
	errMsg        string
	loadingStatus string
}

type TrackerOption func(*Tracker)

func WithTickerFactory(factory TickerFactory) TrackerOption {
	return func(t *Tracker) {
		t.newTicker = factory
	}
}

func NewTracker(prices ports.SnapshotFetcher, series ports.SeriesFetcher, log *logger.Logger, m *metrics.Metrics, opts ...TrackerOption) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Tracker{
		prices:    prices,
		series:    series,
		newTicker: NewTimeTicker,
		log:       log,
		metrics:   m,
		ctx:       ctx,
		cancel:    cancel,
		period:    model.DefaultLookback,
		poll:      model.DefaultPollConfig(),
		priceData: model.PriceData{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Update applies a new currency, asset set and poll config. When anything
// differs from the active inputs it tears down the timer, fetches prices and
// the default chart period right away, and re-arms the timer if enabled.
func (t *Tracker) Update(currency model.Currency, assets []model.AssetID, cfg model.PollConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	currency = model.NormalizeCurrency(currency.String())
	assets = model.UniqueAssets(assets)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTrackerClosed
	}
	t.applyLocked(currency, assets, cfg)
	return nil
}

// ApplyPollConfig swaps the poll config while keeping the active currency and
// asset selection. Before the first Update it only records the config.
func (t *Tracker) ApplyPollConfig(cfg model.PollConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTrackerClosed
	}
	if !t.started {
		t.poll = cfg
		return nil
	}
	t.applyLocked(t.currency, t.assets, cfg)
	return nil
}

func (t *Tracker) applyLocked(currency model.Currency, assets []model.AssetID, cfg model.PollConfig) {
	if t.started && t.currency == currency && slices.Equal(t.assets, assets) && t.poll == cfg {
		return
	}

	t.cancelTimerLocked()

	t.started = true
	t.currency = currency
	t.assets = assets
	t.poll = cfg
	t.period = model.DefaultLookback
	t.errMsg = ""
	t.generation++
	gen := t.generation

	t.log.Info("Tracker inputs changed",
		"currency", currency,
		"assets", assets,
		"auto_refresh", cfg.AutoRefreshEnabled,
		"interval_ms", cfg.RefreshIntervalMs,
	)

	t.startPriceFetchLocked(gen)
	t.startChartFetchLocked(gen, model.DefaultLookback)

	if cfg.AutoRefreshEnabled {
		t.armTimerLocked(gen, cfg.Interval())
	} else {
		t.log.Info("Auto-refresh disabled")
	}
}

// ChangePeriod reloads the chart for a new look-back window. The poll timer
// is left alone.
func (t *Tracker) ChangePeriod(period model.LookbackPeriod) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || !t.started {
		return
	}
	t.period = period
	t.startChartFetchLocked(t.generation, period)
}

// Refresh triggers a one-off price fetch for the active inputs.
func (t *Tracker) Refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || !t.started {
		return
	}
	t.startPriceFetchLocked(t.generation)
}

// Close cancels the timer, aborts outstanding fetches and waits for them to
// return. It is safe to call more than once.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.cancelTimerLocked()
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
}

func (t *Tracker) PollState() PollState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tracker) State() model.TrackerState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := model.TrackerState{
		Currency:          t.currency,
		Assets:            slices.Clone(t.assets),
		Period:            t.period,
		PriceData:         t.priceData.Clone(),
		ChartData:         t.chartData.Clone(),
		IsLoading:         t.inFlight > 0,
		LoadingStatus:     t.loadingStatus,
		Polling:           t.state == Polling,
		RefreshIntervalMs: t.poll.RefreshIntervalMs,
	}
	if state.ChartData == nil {
		state.ChartData = model.ChartSeries{}
	}
	if t.errMsg != "" {
		msg := t.errMsg
		state.Error = &msg
	}
	return state
}

func (t *Tracker) armTimerLocked(gen uint64, interval time.Duration) {
	timer := &pollTimer{
		ticker: t.newTicker(interval),
		stop:   make(chan struct{}),
	}
	t.timer = timer
	t.state = Polling
	t.metrics.TimerArmedTotal.Inc()
	t.log.Info("Auto-refresh enabled", "interval", interval)

	t.wg.Add(1)
	go t.runTimer(timer, gen)
}

func (t *Tracker) cancelTimerLocked() {
	if t.timer == nil {
		return
	}
	t.timer.ticker.Stop()
	close(t.timer.stop)
	t.timer = nil
	t.state = Idle
}

func (t *Tracker) runTimer(timer *pollTimer, gen uint64) {
	defer t.wg.Done()

	for {
		select {
		case <-timer.stop:
			return
		case <-timer.ticker.C():
			select {
			case <-timer.stop:
				return
			default:
			}

			t.mu.Lock()
			if gen == t.generation && !t.closed {
				t.startPriceFetchLocked(gen)
			}
			t.mu.Unlock()
		}
	}
}

func (t *Tracker) startPriceFetchLocked(gen uint64) {
	t.priceSeq++
	seq := t.priceSeq
	currency := t.currency
	assets := slices.Clone(t.assets)

	t.inFlight++
	t.loadingStatus = statusFetchingPrices
	t.errMsg = ""

	t.wg.Add(1)
	go t.fetchPrices(gen, seq, currency, assets)
}

func (t *Tracker) startChartFetchLocked(gen uint64, period model.LookbackPeriod) {
	if len(t.assets) == 0 {
		return
	}
	t.chartSeq++
	seq := t.chartSeq
	currency := t.currency
	assets := slices.Clone(t.assets)

	t.inFlight++
	t.errMsg = ""

	t.wg.Add(1)
	go t.fetchChart(gen, seq, currency, assets, period)
}

func (t *Tracker) fetchPrices(gen, seq uint64, currency model.Currency, assets []model.AssetID) {
	defer t.wg.Done()
	log := t.log.With("cycle", uuid.NewString(), "kind", "price")
	log.Debug("Fetching current prices", "currency", currency, "assets", assets)

	defer func() {
		recovered := recover()

		t.mu.Lock()
		defer t.mu.Unlock()

		t.inFlight--
		if t.loadingStatus == statusFetchingPrices {
			t.loadingStatus = ""
		}
		if recovered != nil {
			log.Error("Price aggregation panicked", "panic", recovered)
			if gen == t.generation {
				t.errMsg = errPriceFetch
			}
		}
	}()

	data := t.prices.FetchSnapshot(t.ctx, currency, assets)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || gen != t.generation || seq != t.priceSeq {
		log.Debug("Discarding stale price result")
		t.metrics.StaleResultsTotal.WithLabelValues("price").Inc()
		return
	}
	t.priceData = data
}

func (t *Tracker) fetchChart(gen, seq uint64, currency model.Currency, assets []model.AssetID, period model.LookbackPeriod) {
	defer t.wg.Done()
	log := t.log.With("cycle", uuid.NewString(), "kind", "chart")
	log.Info("Fetching chart data", "currency", currency, "assets", assets, "period", period)

	var lastStatus string
	progress := func(status string) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if gen == t.generation && seq == t.chartSeq {
			t.loadingStatus = status
			lastStatus = status
		}
	}

	defer func() {
		recovered := recover()

		t.mu.Lock()
		defer t.mu.Unlock()

		t.inFlight--
		if lastStatus != "" && t.loadingStatus == lastStatus {
			t.loadingStatus = ""
		}
		if recovered != nil {
			log.Error("Chart aggregation panicked", "panic", recovered)
			if gen == t.generation && seq == t.chartSeq {
				t.errMsg = errChartFetch
				t.retainChartLocked()
			}
		}
	}()

	series, err := t.series.FetchSeries(t.ctx, currency, assets, period, progress)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || gen != t.generation || seq != t.chartSeq {
		log.Debug("Discarding stale chart result")
		t.metrics.StaleResultsTotal.WithLabelValues("chart").Inc()
		return
	}
	if err != nil {
		log.Error("Failed to fetch chart data", "error", err)
		t.retainChartLocked()
		return
	}
	if series == nil {
		series = model.ChartSeries{}
	}
	t.chartData = series
}

// retainChartLocked keeps the last good chart after a failed cycle; only a
// tracker that never loaded a chart falls back to an empty one.
func (t *Tracker) retainChartLocked() {
	if len(t.chartData) == 0 {
		t.chartData = model.ChartSeries{}
	}
}
