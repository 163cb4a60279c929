package model

// TrackerState is everything a client needs to render the tracker.
type TrackerState struct {
	Currency          Currency       `json:"currency"`
	Assets            []AssetID      `json:"assets"`
	Period            LookbackPeriod `json:"period"`
	PriceData         PriceData      `json:"priceData"`
	ChartData         ChartSeries    `json:"chartData"`
	IsLoading         bool           `json:"isLoading"`
	Error             *string        `json:"error,omitempty"`
	LoadingStatus     string         `json:"loadingStatus"`
	Polling           bool           `json:"polling"`
	RefreshIntervalMs int64          `json:"refreshIntervalMs"`
}
