package ports

import (
	"context"

	"crypto-price-tracker/internal/domain/model"
)

// ProgressFunc receives human readable status text while a slow fetch runs.
type ProgressFunc func(status string)

type SnapshotFetcher interface {
	// FetchSnapshot never fails; unavailable assets map to nil.
	FetchSnapshot(ctx context.Context, currency model.Currency, assets []model.AssetID) model.PriceData
}

type SeriesFetcher interface {
	FetchSeries(ctx context.Context, currency model.Currency, assets []model.AssetID, period model.LookbackPeriod, progress ProgressFunc) (model.ChartSeries, error)
}

type PriceRepository interface {
	SnapshotFetcher
	SeriesFetcher
}

// JSONFetcher performs one logical GET and returns a JSON body.
type JSONFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
