package models

import "github.com/shopspring/decimal"

// CapitalGain is one output row of the gains computation: all fragments that
// share the same (symbol, purchase date, sale date) folded together. Amounts
// are in the reporting currency, rounded to cents. ExchangeRate is the sale
// leg's rate of the last contributing fragment and is informational only.
type CapitalGain struct {
	Symbol           string          `json:"symbol"`
	ISIN             string          `json:"isin"`
	CountryCode      string          `json:"countryCode,omitempty"`
	PurchaseDate     string          `json:"purchaseDate"`
	SaleDate         string          `json:"saleDate"`
	Quantity         decimal.Decimal `json:"quantity"`
	BoughtAmount     decimal.Decimal `json:"boughtAmount"`
	BoughtCurrency   string          `json:"boughtCurrency"`
	SoldAmount       decimal.Decimal `json:"soldAmount"`
	SoldCurrency     string          `json:"soldCurrency"`
	ProfitInEUR      decimal.Decimal `json:"profitInEUR"`
	TransactionCosts decimal.Decimal `json:"transactionCosts"`
	ExchangeRate     decimal.Decimal `json:"exchangeRate"`
}

// SaleWarning records a sale (or the tail of one) that found no open lot to
// consume. The unmatched quantity is dropped from the gain computation; the
// caller decides whether that is acceptable.
type SaleWarning struct {
	Symbol            string          `json:"symbol"`
	SaleDate          string          `json:"saleDate"`
	UnmatchedQuantity decimal.Decimal `json:"unmatchedQuantity"`
	Message           string          `json:"message"`
}

// GainsReport is the full result of one engine invocation.
type GainsReport struct {
	Gains    []CapitalGain `json:"gains"`
	Warnings []SaleWarning `json:"warnings"`
}

// GainsSummary carries the aggregate sums downstream tax exports consume,
// formatted to the reporting currency's two decimals.
type GainsSummary struct {
	TotalSoldAmount       string `json:"totalSoldAmount"`
	TotalBoughtAmount     string `json:"totalBoughtAmount"`
	TotalTransactionCosts string `json:"totalTransactionCosts"`
	TotalProfitInEUR      string `json:"totalProfitInEUR"`
	GainCount             int    `json:"gainCount"`
}
