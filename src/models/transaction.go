package models

import "github.com/shopspring/decimal"

// Transaction is one brokerage buy or sell record, already normalized by the
// upstream importer: dates are canonical YYYY-MM-DD, numeric fields are clean,
// amounts in the reporting currency are pre-computed. A positive Quantity opens
// a position, a negative one closes; zero is not a valid record.
type Transaction struct {
	Date             string          `json:"date"`
	Time             string          `json:"time"`
	Symbol           string          `json:"symbol"`
	ISIN             string          `json:"isin"`
	Quantity         decimal.Decimal `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
	PriceCurrency    string          `json:"priceCurrency"`
	ExchangeRate     decimal.Decimal `json:"exchangeRate"`     // price currency -> EUR
	TransactionCosts decimal.Decimal `json:"transactionCosts"` // already in EUR
	ValueEUR         decimal.Decimal `json:"valueEUR"`
}
