package model

import "encoding/json"

// PriceSnapshot is the current price and 24h percent change of one asset.
type PriceSnapshot struct {
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
}

// PriceData maps every requested asset to its snapshot. A nil value marks the
// asset as temporarily unavailable; the key is never omitted.
type PriceData map[AssetID]*PriceSnapshot

// Clone returns a copy that shares no snapshot pointers with p.
func (p PriceData) Clone() PriceData {
	if p == nil {
		return nil
	}
	out := make(PriceData, len(p))
	for id, snap := range p {
		if snap == nil {
			out[id] = nil
			continue
		}
		copied := *snap
		out[id] = &copied
	}
	return out
}

// ChartPoint holds the prices of every asset that reported at Timestamp.
type ChartPoint struct {
	Timestamp string
	Values    map[AssetID]float64
}

// MarshalJSON flattens the point to {"date": ..., "<asset>": price, ...}.
func (p ChartPoint) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(p.Values)+1)
	for id, value := range p.Values {
		flat[string(id)] = value
	}
	flat["date"] = p.Timestamp
	return json.Marshal(flat)
}

// ChartSeries is ordered strictly ascending by timestamp.
type ChartSeries []ChartPoint

// Clone deep-copies the series. A nil series stays nil.
func (s ChartSeries) Clone() ChartSeries {
	if s == nil {
		return nil
	}
	out := make(ChartSeries, len(s))
	for i, point := range s {
		values := make(map[AssetID]float64, len(point.Values))
		for id, v := range point.Values {
			values[id] = v
		}
		out[i] = ChartPoint{Timestamp: point.Timestamp, Values: values}
	}
	return out
}
