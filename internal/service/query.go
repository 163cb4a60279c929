package service

import (
	"context"
	"errors"
	"fmt"

	"crypto-price-tracker/internal/domain/model"
	"crypto-price-tracker/internal/domain/ports"
	"crypto-price-tracker/internal/metrics"
	"crypto-price-tracker/pkg/logger"
)

var (
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrNoAssets           = errors.New("at least one asset is required")
	ErrExternalAPIFailure = errors.New("external API failure")
)

// QueryService answers one-off price and history lookups outside the
// tracker's polling lifecycle. History results are cached.
type QueryService struct {
	repository ports.PriceRepository
	cache      ports.SeriesCache
	log        *logger.Logger
	metrics    *metrics.Metrics
}

func NewQueryService(repository ports.PriceRepository, cache ports.SeriesCache, log *logger.Logger, m *metrics.Metrics) *QueryService {
	return &QueryService{
		repository: repository,
		cache:      cache,
		log:        log,
		metrics:    m,
	}
}

func (s *QueryService) GetSnapshot(ctx context.Context, currency model.Currency, assets []model.AssetID) (model.PriceData, error) {
	currency, assets, err := validateSelection(currency, assets)
	if err != nil {
		return nil, err
	}

	s.log.Info("Fetching current prices", "currency", currency, "assets", assets)
	return s.repository.FetchSnapshot(ctx, currency, assets), nil
}

func (s *QueryService) GetSeries(ctx context.Context, currency model.Currency, assets []model.AssetID, period model.LookbackPeriod) (model.ChartSeries, error) {
	currency, assets, err := validateSelection(currency, assets)
	if err != nil {
		return nil, err
	}

	key := model.SeriesKey(currency, period, assets)
	if series, found := s.cache.Get(ctx, key); found {
		s.metrics.SeriesCacheLookupTotal.WithLabelValues("hit").Inc()
		s.log.Info("Chart data found in cache", "key", key)
		return series, nil
	}
	s.metrics.SeriesCacheLookupTotal.WithLabelValues("miss").Inc()

	s.log.Info("Fetching chart data from repository", "key", key)
	series, err := s.repository.FetchSeries(ctx, currency, assets, period, nil)
	if err != nil {
		s.log.Error("Failed to fetch chart data", "error", err, "key", key)
		return nil, fmt.Errorf("%w: %v", ErrExternalAPIFailure, err)
	}

	// an empty series means every asset failed; try again next time
	if len(series) > 0 {
		if err := s.cache.Set(ctx, key, series); err != nil {
			s.log.Error("Failed to cache chart data", "error", err, "key", key)
		}
	}

	return series, nil
}

func (s *QueryService) ClearExpired(ctx context.Context) error {
	if err := s.cache.ClearExpired(ctx); err != nil {
		s.log.Error("Failed to clear expired cache entries", "error", err)
		return err
	}
	return nil
}

func validateSelection(currency model.Currency, assets []model.AssetID) (model.Currency, []model.AssetID, error) {
	currency = model.NormalizeCurrency(currency.String())
	if !currency.IsSupported() {
		return "", nil, ErrInvalidCurrency
	}

	assets = model.UniqueAssets(assets)
	if len(assets) == 0 {
		return "", nil, ErrNoAssets
	}
	return currency, assets, nil
}
