package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"crypto-price-tracker/internal/domain/model"
	"crypto-price-tracker/internal/domain/ports"
	"crypto-price-tracker/pkg/utils"
)

const (
	histoHourPath = "/data/v2/histohour"
	histoDayPath  = "/data/v2/histoday"

	historySuccess = "Success"
)

type histoResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     *struct {
		Data []histoBucket `json:"Data"`
	} `json:"Data"`
}

type histoBucket struct {
	Time  int64   `json:"time"`
	Close float64 `json:"close"`
}

// FetchSeries loads price history for each asset in turn and merges the
// per-asset series into one table ordered by timestamp. Assets whose history
// cannot be loaded are left out; the loop always moves on to the next asset.
func (a *CryptoCompareAPI) FetchSeries(ctx context.Context, currency model.Currency, assets []model.AssetID, period model.LookbackPeriod, progress ports.ProgressFunc) (model.ChartSeries, error) {
	if len(assets) == 0 {
		return nil, ErrNoAssets
	}
	if progress == nil {
		progress = func(string) {}
	}

	a.metrics.ChartFetchesTotal.WithLabelValues(period.String()).Inc()
	limit, granularity := period.Window()

	merged := make(map[int64]map[model.AssetID]float64)
	for i, id := range assets {
		progress(fmt.Sprintf("Fetching %s price history...", a.symbols.DisplayName(id)))

		if i > 0 {
			if err := a.sleep(ctx, a.pacingDelay); err != nil {
				return nil, err
			}
		}

		buckets, err := a.fetchHistory(ctx, currency, id, limit, granularity)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			a.log.Error("Failed to fetch price history", "error", err, "asset", id, "currency", currency, "period", period)
			a.markUnavailable("history", []model.AssetID{id})
			continue
		}

		for _, bucket := range buckets {
			ts := utils.SecondsToMillis(bucket.Time)
			point, ok := merged[ts]
			if !ok {
				point = make(map[model.AssetID]float64)
				merged[ts] = point
			}
			point[id] = utils.RoundCents(bucket.Close)
		}
	}

	series := mergeSeries(merged)
	a.log.Info("Chart data processed", "points", len(series), "assets", len(assets), "currency", currency, "period", period)
	return series, nil
}

func (a *CryptoCompareAPI) fetchHistory(ctx context.Context, currency model.Currency, id model.AssetID, limit int, granularity model.Granularity) ([]histoBucket, error) {
	path := histoDayPath
	if granularity == model.Hourly {
		path = histoHourPath
	}

	query := url.Values{}
	query.Set("fsym", a.symbols.ToExternal(id))
	query.Set("tsym", currency.String())
	query.Set("limit", strconv.Itoa(limit))

	body, err := a.fetcher.Fetch(ctx, a.buildURL(path, query))
	if err != nil {
		return nil, err
	}

	var apiResp histoResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode history response: %w", err)
	}
	if apiResp.Response != historySuccess || apiResp.Data == nil {
		return nil, fmt.Errorf("history request rejected: response=%q message=%q", apiResp.Response, apiResp.Message)
	}
	return apiResp.Data.Data, nil
}

// mergeSeries orders the folded points by timestamp. Map keys are unique, so
// the result is strictly ascending.
func mergeSeries(merged map[int64]map[model.AssetID]float64) model.ChartSeries {
	timestamps := make([]int64, 0, len(merged))
	for ts := range merged {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	series := make(model.ChartSeries, 0, len(timestamps))
	for _, ts := range timestamps {
		series = append(series, model.ChartPoint{
			Timestamp: utils.FormatUnixMilli(ts),
			Values:    merged[ts],
		})
	}
	return series
}
