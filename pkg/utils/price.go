package utils

import "github.com/shopspring/decimal"

// RoundCents rounds a price to two decimal places, halves away from zero.
func RoundCents(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}
