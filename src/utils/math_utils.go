package utils

import "github.com/shopspring/decimal"

// RoundEUR rounds an amount to the reporting currency's minor unit (2 decimal
// places, half away from zero). Amounts are rounded exactly once, from
// full-precision intermediates.
func RoundEUR(val decimal.Decimal) decimal.Decimal {
	return val.Round(2)
}

// FormatEUR renders an amount with exactly two decimals, e.g. "1500.00".
func FormatEUR(val decimal.Decimal) string {
	return val.StringFixed(2)
}
