package ports

import (
	"context"

	"crypto-price-tracker/internal/domain/model"
)

type SeriesCache interface {
	Get(ctx context.Context, key string) (model.ChartSeries, bool)
	Set(ctx context.Context, key string, series model.ChartSeries) error
	ClearExpired(ctx context.Context) error
}
