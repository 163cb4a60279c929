package repository

import "crypto-price-tracker/internal/domain/model"

// DefaultSymbolTable maps legacy asset ids to the price API's ticker symbols.
var DefaultSymbolTable = map[model.AssetID]string{
	"bitcoin":     "BTC",
	"ethereum":    "ETH",
	"tether":      "USDT",
	"binancecoin": "BNB",
	"solana":      "SOL",
	"ripple":      "XRP",
	"usd-coin":    "USDC",
	"cardano":     "ADA",
	"dogecoin":    "DOGE",
	"avalanche-2": "AVAX",
}

// SymbolMapper translates between canonical asset ids and ticker symbols.
// Identifiers missing from the table map to themselves.
type SymbolMapper struct {
	toExternal  map[model.AssetID]string
	toCanonical map[string]model.AssetID
}

// NewSymbolMapper copies forward and derives the reverse direction from it.
func NewSymbolMapper(forward map[model.AssetID]string) *SymbolMapper {
	m := &SymbolMapper{
		toExternal:  make(map[model.AssetID]string, len(forward)),
		toCanonical: make(map[string]model.AssetID, len(forward)),
	}
	for id, symbol := range forward {
		m.toExternal[id] = symbol
		m.toCanonical[symbol] = id
	}
	return m
}

func (m *SymbolMapper) ToExternal(id model.AssetID) string {
	if symbol, ok := m.toExternal[id]; ok {
		return symbol
	}
	return string(id)
}

func (m *SymbolMapper) ToCanonical(symbol string) model.AssetID {
	if id, ok := m.toCanonical[symbol]; ok {
		return id
	}
	return model.AssetID(symbol)
}

// DisplayName resolves the catalogue name for an asset, falling back to its id.
func (m *SymbolMapper) DisplayName(id model.AssetID) string {
	if info, ok := model.LookupAsset(model.AssetID(m.ToExternal(id))); ok {
		return info.Name
	}
	return string(id)
}
