package model

import "strings"

type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	BDT Currency = "BDT"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	INR Currency = "INR"
)

var SupportedCurrencies = []Currency{USD, EUR, BDT, GBP, JPY, INR}

// NormalizeCurrency trims and upper-cases a fiat code.
func NormalizeCurrency(code string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(code)))
}

func (c Currency) IsSupported() bool {
	for _, supportedCurrency := range SupportedCurrencies {
		if c == supportedCurrency {
			return true
		}
	}
	return false
}

func (c Currency) String() string {
	return string(c)
}
