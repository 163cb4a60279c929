package repository

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"crypto-price-tracker/internal/domain/model"
)

const priceMultiFullPath = "/data/pricemultifull"

type priceMultiFullResponse struct {
	Raw map[string]map[string]rawQuote `json:"RAW"`
}

type rawQuote struct {
	Price           *float64 `json:"PRICE"`
	ChangePct24Hour *float64 `json:"CHANGEPCT24HOUR"`
}

// FetchSnapshot loads current prices for all assets in one batched request.
// The result always has exactly one entry per requested asset; anything the
// API did not deliver is nil.
func (a *CryptoCompareAPI) FetchSnapshot(ctx context.Context, currency model.Currency, assets []model.AssetID) model.PriceData {
	a.metrics.PriceFetchesTotal.Inc()

	result := make(model.PriceData, len(assets))
	for _, id := range assets {
		result[id] = nil
	}
	if len(assets) == 0 {
		return result
	}

	symbols := make([]string, len(assets))
	for i, id := range assets {
		symbols[i] = a.symbols.ToExternal(id)
	}

	query := url.Values{}
	query.Set("fsyms", strings.Join(symbols, ","))
	query.Set("tsyms", currency.String())

	body, err := a.fetcher.Fetch(ctx, a.buildURL(priceMultiFullPath, query))
	if err != nil {
		a.log.Error("Failed to fetch current prices", "error", err, "currency", currency, "assets", symbols)
		a.markUnavailable("price", assets)
		return result
	}

	var apiResp priceMultiFullResponse
	if err := json.Unmarshal(body, &apiResp); err != nil || apiResp.Raw == nil {
		a.log.Error("Unexpected price response shape", "error", err, "currency", currency)
		a.markUnavailable("price", assets)
		return result
	}

	requested := make(map[string]struct{}, len(symbols))
	for _, symbol := range symbols {
		requested[symbol] = struct{}{}
	}
	for symbol := range apiResp.Raw {
		if _, ok := requested[symbol]; !ok {
			a.log.Debug("Ignoring unrequested symbol in price response", "symbol", symbol, "asset", a.symbols.ToCanonical(symbol))
		}
	}

	var missing []model.AssetID
	for i, id := range assets {
		quote, ok := apiResp.Raw[symbols[i]][currency.String()]
		if !ok || quote.Price == nil || quote.ChangePct24Hour == nil {
			missing = append(missing, id)
			continue
		}
		result[id] = &model.PriceSnapshot{
			Price:     *quote.Price,
			Change24h: *quote.ChangePct24Hour,
		}
	}

	if len(missing) > 0 {
		a.log.Warn("Price data missing for some assets", "currency", currency, "assets", missing)
		a.markUnavailable("price", missing)
	}
	return result
}

func (a *CryptoCompareAPI) markUnavailable(kind string, assets []model.AssetID) {
	for _, id := range assets {
		a.metrics.AssetUnavailableTotal.WithLabelValues(kind, string(id)).Inc()
	}
}
