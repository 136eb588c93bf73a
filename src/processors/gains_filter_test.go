package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/capgains/backend/src/models"
)

func gainOn(symbol, saleDate, sold, bought, costs string) models.CapitalGain {
	soldD, boughtD, costsD := dec(sold), dec(bought), dec(costs)
	return models.CapitalGain{
		Symbol:           symbol,
		SaleDate:         saleDate,
		SoldAmount:       soldD,
		BoughtAmount:     boughtD,
		ProfitInEUR:      soldD.Sub(boughtD),
		TransactionCosts: costsD,
	}
}

func TestFilterGainsBySaleDate(t *testing.T) {
	gains := []models.CapitalGain{
		gainOn("AAPL", "2023-01-15", "100", "80", "1"),
		gainOn("AAPL", "2023-06-30", "200", "150", "1"),
		gainOn("MSFT", "2023-12-31", "300", "250", "1"),
	}

	t.Run("open range returns everything", func(t *testing.T) {
		assert.Len(t, FilterGainsBySaleDate(gains, "", ""), 3)
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		filtered := FilterGainsBySaleDate(gains, "2023-01-15", "2023-06-30")
		require.Len(t, filtered, 2)
		assert.Equal(t, "2023-01-15", filtered[0].SaleDate)
		assert.Equal(t, "2023-06-30", filtered[1].SaleDate)
	})

	t.Run("from only", func(t *testing.T) {
		filtered := FilterGainsBySaleDate(gains, "2023-07-01", "")
		require.Len(t, filtered, 1)
		assert.Equal(t, "MSFT", filtered[0].Symbol)
	})

	t.Run("to only", func(t *testing.T) {
		filtered := FilterGainsBySaleDate(gains, "", "2023-01-31")
		require.Len(t, filtered, 1)
		assert.Equal(t, "2023-01-15", filtered[0].SaleDate)
	})

	t.Run("empty window", func(t *testing.T) {
		assert.Empty(t, FilterGainsBySaleDate(gains, "2024-01-01", "2024-12-31"))
	})

	t.Run("input not mutated", func(t *testing.T) {
		FilterGainsBySaleDate(gains, "2023-06-01", "2023-12-31")
		assert.Len(t, gains, 3)
		assert.Equal(t, "2023-01-15", gains[0].SaleDate)
	})
}

func TestSummarizeGains(t *testing.T) {
	gains := []models.CapitalGain{
		gainOn("AAPL", "2023-01-15", "100.50", "80.25", "1.50"),
		gainOn("MSFT", "2023-06-30", "200.00", "250.00", "2.00"),
	}

	summary := SummarizeGains(gains)
	assert.Equal(t, "300.50", summary.TotalSoldAmount)
	assert.Equal(t, "330.25", summary.TotalBoughtAmount)
	assert.Equal(t, "3.50", summary.TotalTransactionCosts)
	assert.Equal(t, "-29.75", summary.TotalProfitInEUR)
	assert.Equal(t, 2, summary.GainCount)
}

func TestSummarizeGainsEmpty(t *testing.T) {
	summary := SummarizeGains(nil)
	assert.Equal(t, "0.00", summary.TotalSoldAmount)
	assert.Equal(t, 0, summary.GainCount)
}
