package models

import "github.com/shopspring/decimal"

// FormatCents renders minor units as a major-unit amount with two decimals.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
