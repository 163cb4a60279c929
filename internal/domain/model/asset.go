package model

import "strings"

// AssetID is the canonical identifier of a tracked cryptocurrency.
type AssetID string

func (a AssetID) String() string {
	return string(a)
}

type AssetInfo struct {
	ID     AssetID `json:"id"`
	Name   string  `json:"name"`
	Symbol string  `json:"symbol"`
	Color  string  `json:"color"`
}

var SupportedAssets = []AssetInfo{
	{ID: "BTC", Name: "Bitcoin", Symbol: "BTC", Color: "#F7931A"},
	{ID: "ETH", Name: "Ethereum", Symbol: "ETH", Color: "#627EEA"},
	{ID: "USDT", Name: "Tether", Symbol: "USDT", Color: "#26A17B"},
	{ID: "BNB", Name: "BNB", Symbol: "BNB", Color: "#F0B90B"},
	{ID: "SOL", Name: "Solana", Symbol: "SOL", Color: "#00FFA3"},
}

// LookupAsset finds catalogue metadata by id.
func LookupAsset(id AssetID) (AssetInfo, bool) {
	for _, asset := range SupportedAssets {
		if asset.ID == id {
			return asset, true
		}
	}
	return AssetInfo{}, false
}

// ParseAssetIDs splits a comma separated list, dropping blanks and duplicates.
func ParseAssetIDs(raw string) []AssetID {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]AssetID, 0, len(parts))
	for _, part := range parts {
		ids = append(ids, AssetID(part))
	}
	return UniqueAssets(ids)
}

// UniqueAssets trims ids and removes blanks and repeats, keeping first-seen order.
func UniqueAssets(ids []AssetID) []AssetID {
	seen := make(map[AssetID]struct{}, len(ids))
	out := make([]AssetID, 0, len(ids))
	for _, id := range ids {
		id = AssetID(strings.TrimSpace(string(id)))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
