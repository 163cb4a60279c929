package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-price-tracker/internal/domain/model"
	"crypto-price-tracker/internal/domain/ports"
	"crypto-price-tracker/pkg/logger"
)

func TestQueryService_GetSeries(t *testing.T) {
	log := logger.NewNopLogger()
	cached := sampleSeries("BTC")

	testCases := []struct {
		name           string
		currency       model.Currency
		assets         []model.AssetID
		mockCache      *MockSeriesCache
		mockRepository *MockPriceRepository
		expectedSeries model.ChartSeries
		expectedError  error
		expectedCalls  int
	}{
		{
			name:     "Success - Cache Hit",
			currency: model.USD,
			assets:   []model.AssetID{"BTC"},
			mockCache: &MockSeriesCache{
				GetFunc: func(ctx context.Context, key string) (model.ChartSeries, bool) {
					return cached, true
				},
			},
			mockRepository: &MockPriceRepository{},
			expectedSeries: cached,
			expectedCalls:  0,
		},
		{
			name:     "Success - Cache Miss, Repository Hit",
			currency: "usd",
			assets:   []model.AssetID{"BTC", "ETH"},
			mockCache: &MockSeriesCache{
				GetFunc: func(ctx context.Context, key string) (model.ChartSeries, bool) {
					return nil, false
				},
				SetFunc: func(ctx context.Context, key string, series model.ChartSeries) error {
					assert.Equal(t, "USD-30-BTC,ETH", key)
					return nil
				},
			},
			mockRepository: &MockPriceRepository{},
			expectedSeries: sampleSeries("BTC", "ETH"),
			expectedCalls:  1,
		},
		{
			name:     "Empty Series Is Not Cached",
			currency: model.EUR,
			assets:   []model.AssetID{"BTC"},
			mockCache: &MockSeriesCache{
				GetFunc: func(ctx context.Context, key string) (model.ChartSeries, bool) {
					return nil, false
				},
				SetFunc: func(ctx context.Context, key string, series model.ChartSeries) error {
					t.Error("empty series must not be cached")
					return nil
				},
			},
			mockRepository: &MockPriceRepository{
				FetchSeriesFunc: func(ctx context.Context, currency model.Currency, assets []model.AssetID, period model.LookbackPeriod, progress ports.ProgressFunc) (model.ChartSeries, error) {
					return model.ChartSeries{}, nil
				},
			},
			expectedSeries: model.ChartSeries{},
			expectedCalls:  1,
		},
		{
			name:           "Error - Invalid Currency",
			currency:       "XYZ",
			assets:         []model.AssetID{"BTC"},
			mockCache:      &MockSeriesCache{},
			mockRepository: &MockPriceRepository{},
			expectedError:  ErrInvalidCurrency,
		},
		{
			name:           "Error - No Assets",
			currency:       model.USD,
			assets:         []model.AssetID{" "},
			mockCache:      &MockSeriesCache{},
			mockRepository: &MockPriceRepository{},
			expectedError:  ErrNoAssets,
		},
		{
			name:     "Error - Repository Failure",
			currency: model.USD,
			assets:   []model.AssetID{"BTC"},
			mockCache: &MockSeriesCache{
				GetFunc: func(ctx context.Context, key string) (model.ChartSeries, bool) {
					return nil, false
				},
			},
			mockRepository: &MockPriceRepository{
				FetchSeriesFunc: func(ctx context.Context, currency model.Currency, assets []model.AssetID, period model.LookbackPeriod, progress ports.ProgressFunc) (model.ChartSeries, error) {
					return nil, errors.New("boom")
				},
			},
			expectedError: ErrExternalAPIFailure,
			expectedCalls: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service := NewQueryService(tc.mockRepository, tc.mockCache, log, newTestMetrics())

			series, err := service.GetSeries(context.Background(), tc.currency, tc.assets, model.Period30Days)

			if tc.expectedError != nil {
				assert.True(t, errors.Is(err, tc.expectedError), "got %v", err)
				assert.Nil(t, series)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expectedSeries, series)
			}
			assert.Len(t, tc.mockRepository.SeriesCalls(), tc.expectedCalls)
		})
	}
}

func TestQueryService_GetSnapshot(t *testing.T) {
	repository := &MockPriceRepository{}
	service := NewQueryService(repository, &MockSeriesCache{}, logger.NewNopLogger(), newTestMetrics())

	data, err := service.GetSnapshot(context.Background(), "eur", []model.AssetID{"BTC", "BTC", "ETH"})
	require.NoError(t, err)
	assert.Len(t, data, 2)

	calls := repository.SnapshotCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, model.EUR, calls[0].Currency)
	assert.Equal(t, []model.AssetID{"BTC", "ETH"}, calls[0].Assets)

	_, err = service.GetSnapshot(context.Background(), model.USD, nil)
	assert.True(t, errors.Is(err, ErrNoAssets))
}

func TestQueryService_ClearExpired(t *testing.T) {
	cleared := 0
	cache := &MockSeriesCache{
		ClearExpiredFunc: func(ctx context.Context) error {
			cleared++
			return nil
		},
	}
	service := NewQueryService(&MockPriceRepository{}, cache, logger.NewNopLogger(), newTestMetrics())

	require.NoError(t, service.ClearExpired(context.Background()))
	assert.Equal(t, 1, cleared)

	cache.ClearExpiredFunc = func(ctx context.Context) error { return errors.New("disk full") }
	assert.Error(t, service.ClearExpired(context.Background()))
}
