package model

import (
	"fmt"
	"strings"
)

// LookbackPeriod is the requested history window, in days, as a string code.
type LookbackPeriod string

const (
	Period1Day   LookbackPeriod = "1"
	Period7Days  LookbackPeriod = "7"
	Period30Days LookbackPeriod = "30"
	Period90Days LookbackPeriod = "90"
	Period1Year  LookbackPeriod = "365"

	DefaultLookback = Period7Days
)

type Granularity string

const (
	Hourly Granularity = "hour"
	Daily  Granularity = "day"
)

// Window maps a period to the bucket count and granularity requested from the
// history endpoint. Unknown codes fall back to 30 daily buckets.
func (p LookbackPeriod) Window() (int, Granularity) {
	switch p {
	case Period1Day:
		return 24, Hourly
	case Period7Days:
		return 168, Daily
	case Period30Days:
		return 30, Daily
	case Period90Days:
		return 90, Daily
	case Period1Year:
		return 365, Daily
	default:
		return 30, Daily
	}
}

func (p LookbackPeriod) String() string {
	return string(p)
}

// SeriesKey identifies a chart request. Asset order is kept as given because
// it drives request order.
func SeriesKey(currency Currency, period LookbackPeriod, assets []AssetID) string {
	ids := make([]string, len(assets))
	for i, id := range assets {
		ids[i] = string(id)
	}
	return fmt.Sprintf("%s-%s-%s", currency, period, strings.Join(ids, ","))
}
