package processors

import (
	"github.com/shopspring/decimal"
	"github.com/username/capgains/backend/src/models"
	"github.com/username/capgains/backend/src/utils"
)

// FilterGainsBySaleDate returns the gains whose sale date falls inside the
// inclusive [from, to] range. Empty bounds are open. Canonical YYYY-MM-DD
// dates compare lexicographically, so plain string comparison is exact. The
// input slice is never mutated; the filter is a view for downstream consumers.
func FilterGainsBySaleDate(gains []models.CapitalGain, from, to string) []models.CapitalGain {
	if from == "" && to == "" {
		return gains
	}
	filtered := make([]models.CapitalGain, 0, len(gains))
	for _, gain := range gains {
		if from != "" && gain.SaleDate < from {
			continue
		}
		if to != "" && gain.SaleDate > to {
			continue
		}
		filtered = append(filtered, gain)
	}
	return filtered
}

// SummarizeGains totals a gain set's sold amount, bought amount, transaction
// costs and profit, formatted to two decimals the way tax exports consume
// them.
func SummarizeGains(gains []models.CapitalGain) models.GainsSummary {
	totalSold := decimal.Zero
	totalBought := decimal.Zero
	totalCosts := decimal.Zero
	totalProfit := decimal.Zero
	for _, gain := range gains {
		totalSold = totalSold.Add(gain.SoldAmount)
		totalBought = totalBought.Add(gain.BoughtAmount)
		totalCosts = totalCosts.Add(gain.TransactionCosts)
		totalProfit = totalProfit.Add(gain.ProfitInEUR)
	}
	return models.GainsSummary{
		TotalSoldAmount:       utils.FormatEUR(totalSold),
		TotalBoughtAmount:     utils.FormatEUR(totalBought),
		TotalTransactionCosts: utils.FormatEUR(totalCosts),
		TotalProfitInEUR:      utils.FormatEUR(totalProfit),
		GainCount:             len(gains),
	}
}
