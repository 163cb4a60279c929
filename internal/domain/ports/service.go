package ports

import (
	"context"

	"crypto-price-tracker/internal/domain/model"
)

type QueryService interface {
	GetSnapshot(ctx context.Context, currency model.Currency, assets []model.AssetID) (model.PriceData, error)
	GetSeries(ctx context.Context, currency model.Currency, assets []model.AssetID, period model.LookbackPeriod) (model.ChartSeries, error)
	ClearExpired(ctx context.Context) error
}

// PriceTracker is the polling coordinator as seen by the HTTP layer.
type PriceTracker interface {
	Update(currency model.Currency, assets []model.AssetID, cfg model.PollConfig) error
	ApplyPollConfig(cfg model.PollConfig) error
	ChangePeriod(period model.LookbackPeriod)
	Refresh()
	State() model.TrackerState
}

// ConfigStore persists the poll configuration across restarts.
type ConfigStore interface {
	Load(ctx context.Context) (model.PollConfig, error)
	Save(ctx context.Context, cfg model.PollConfig) error
}
