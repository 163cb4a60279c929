package repository

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-price-tracker/internal/domain/model"
)

func TestFetchSnapshot(t *testing.T) {
	testCases := []struct {
		name     string
		assets   []model.AssetID
		status   int
		body     string
		expected model.PriceData
	}{
		{
			name:   "all assets present",
			assets: []model.AssetID{"BTC", "ETH"},
			status: http.StatusOK,
			body: `{"RAW":{
				"BTC":{"USD":{"PRICE":42000.5,"CHANGEPCT24HOUR":1.25}},
				"ETH":{"USD":{"PRICE":2500,"CHANGEPCT24HOUR":-0.5}}}}`,
			expected: model.PriceData{
				"BTC": {Price: 42000.5, Change24h: 1.25},
				"ETH": {Price: 2500, Change24h: -0.5},
			},
		},
		{
			name:   "only BTC returned",
			assets: []model.AssetID{"BTC", "ETH"},
			status: http.StatusOK,
			body:   `{"RAW":{"BTC":{"USD":{"PRICE":42000.5,"CHANGEPCT24HOUR":1.25}}}}`,
			expected: model.PriceData{
				"BTC": {Price: 42000.5, Change24h: 1.25},
				"ETH": nil,
			},
		},
		{
			name:   "missing change field",
			assets: []model.AssetID{"BTC"},
			status: http.StatusOK,
			body:   `{"RAW":{"BTC":{"USD":{"PRICE":42000.5}}}}`,
			expected: model.PriceData{
				"BTC": nil,
			},
		},
		{
			name:   "legacy id mapped to symbol",
			assets: []model.AssetID{"bitcoin"},
			status: http.StatusOK,
			body:   `{"RAW":{"BTC":{"USD":{"PRICE":1,"CHANGEPCT24HOUR":2}}}}`,
			expected: model.PriceData{
				"bitcoin": {Price: 1, Change24h: 2},
			},
		},
		{
			name:   "malformed shape",
			assets: []model.AssetID{"BTC", "SOL"},
			status: http.StatusOK,
			body:   `{"Response":"Error","Message":"rate limit"}`,
			expected: model.PriceData{
				"BTC": nil,
				"SOL": nil,
			},
		},
		{
			name:   "request fails after retries",
			assets: []model.AssetID{"BTC", "ETH", "SOL"},
			status: http.StatusInternalServerError,
			expected: model.PriceData{
				"BTC": nil,
				"ETH": nil,
				"SOL": nil,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
				if tc.status != http.StatusOK {
					w.WriteHeader(tc.status)
					return
				}
				writeJSON(w, tc.body)
			})

			result := env.api.FetchSnapshot(context.Background(), model.USD, tc.assets)

			assert.Equal(t, tc.expected, result)
			assert.Len(t, result, len(tc.assets))
		})
	}
}

func TestFetchSnapshot_SingleBatchedRequest(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"RAW":{}}`)
	})

	result := env.api.FetchSnapshot(context.Background(), model.EUR, []model.AssetID{"BTC", "ethereum", "SOL"})

	requests := env.requests.All()
	require.Len(t, requests, 1)
	assert.Equal(t, priceMultiFullPath, requests[0].Path)
	assert.Equal(t, "BTC,ETH,SOL", requests[0].Query().Get("fsyms"))
	assert.Equal(t, "EUR", requests[0].Query().Get("tsyms"))

	assert.ElementsMatch(t, []model.AssetID{"BTC", "ethereum", "SOL"}, keys(result))
}

func TestFetchSnapshot_KeySetMatchesRequest(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"RAW":{"XRP":{"USD":{"PRICE":0.5,"CHANGEPCT24HOUR":3}}}}`)
	})

	assetSets := [][]model.AssetID{
		{"BTC"},
		{"BTC", "ETH"},
		{"USDT", "BNB", "SOL", "XRP"},
	}
	for _, assets := range assetSets {
		result := env.api.FetchSnapshot(context.Background(), model.USD, assets)
		assert.ElementsMatch(t, assets, keys(result))
	}
}

func TestFetchSnapshot_APIKeyAppended(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"RAW":{}}`)
	})
	env.api.apiKey = "secret"

	env.api.FetchSnapshot(context.Background(), model.USD, []model.AssetID{"BTC"})

	requests := env.requests.All()
	require.Len(t, requests, 1)
	assert.Equal(t, "secret", requests[0].Query().Get("api_key"))
}

func keys(data model.PriceData) []model.AssetID {
	out := make([]model.AssetID, 0, len(data))
	for id := range data {
		out = append(out, id)
	}
	return out
}
