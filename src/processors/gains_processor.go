package processors

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/capgains/backend/src/models"
	"github.com/username/capgains/backend/src/utils"
)

type capitalGainsProcessor struct{}

// NewGainsProcessor returns the FIFO lot-matching implementation of
// GainsProcessor.
func NewGainsProcessor() GainsProcessor {
	return &capitalGainsProcessor{}
}

// openLot is one still-open purchase. The per-symbol queue owns its lots
// exclusively; Remaining decreases as sales consume it and the lot is popped
// when it reaches zero. OriginalQuantity and TotalCosts stay fixed so each
// partial consumption can take its proportional share of the purchase costs.
type openLot struct {
	Date             string
	ISIN             string
	Remaining        decimal.Decimal
	OriginalQuantity decimal.Decimal
	Price            decimal.Decimal
	ExchangeRate     decimal.Decimal
	TotalCosts       decimal.Decimal
}

// gainKey identifies one output row: fragments sharing all three fields fold
// into the same CapitalGain.
type gainKey struct {
	Symbol       string
	PurchaseDate string
	SaleDate     string
}

// Process runs the three stages in sequence: chronological ordering, FIFO lot
// matching, and aggregation with the final report ordering. A batch with
// unparseable date/time fields is rejected atomically with a RowErrors listing
// every offending row.
func (p *capitalGainsProcessor) Process(transactions []models.Transaction) (*models.GainsReport, error) {
	ordered, err := sortChronologically(transactions)
	if err != nil {
		return nil, err
	}

	lots := make(map[string][]*openLot)
	gains := make(map[gainKey]*models.CapitalGain)
	var warnings []models.SaleWarning

	for _, tx := range ordered {
		if tx.Quantity.IsPositive() {
			lots[tx.Symbol] = append(lots[tx.Symbol], &openLot{
				Date:             tx.Date,
				ISIN:             tx.ISIN,
				Remaining:        tx.Quantity,
				OriginalQuantity: tx.Quantity,
				Price:            tx.Price,
				ExchangeRate:     tx.ExchangeRate,
				TotalCosts:       tx.TransactionCosts,
			})
			continue
		}

		// The sale's own total cost and total quantity are fixed here and
		// reused unchanged across every lot this sale consumes.
		sellQty := tx.Quantity.Abs()
		remaining := sellQty

		for remaining.IsPositive() {
			queue := lots[tx.Symbol]
			if len(queue) == 0 {
				warnings = append(warnings, models.SaleWarning{
					Symbol:            tx.Symbol,
					SaleDate:          tx.Date,
					UnmatchedQuantity: remaining,
					Message:           fmt.Sprintf("sale of %s %s on %s has no open lots to match against", remaining, tx.Symbol, tx.Date),
				})
				break
			}

			lot := queue[0]
			matched := decimal.Min(remaining, lot.Remaining)

			// Full-precision amounts in the reporting currency; rounding
			// happens once, on the emitted values.
			rawBought := lot.Price.Mul(matched).Div(lot.ExchangeRate)
			rawSold := tx.Price.Mul(matched).Div(tx.ExchangeRate)

			buyCostShare := lot.TotalCosts.Mul(matched).Div(lot.OriginalQuantity)
			sellCostShare := tx.TransactionCosts.Mul(matched).Div(sellQty)
			fragmentCosts := utils.RoundEUR(buyCostShare.Add(sellCostShare))

			key := gainKey{Symbol: tx.Symbol, PurchaseDate: lot.Date, SaleDate: tx.Date}
			if gain, ok := gains[key]; ok {
				gain.Quantity = gain.Quantity.Add(matched)
				gain.BoughtAmount = utils.RoundEUR(gain.BoughtAmount.Add(rawBought))
				gain.SoldAmount = utils.RoundEUR(gain.SoldAmount.Add(rawSold))
				gain.ProfitInEUR = utils.RoundEUR(gain.SoldAmount.Sub(gain.BoughtAmount))
				gain.TransactionCosts = utils.RoundEUR(gain.TransactionCosts.Add(fragmentCosts))
				gain.ExchangeRate = tx.ExchangeRate
			} else {
				gains[key] = &models.CapitalGain{
					Symbol:           tx.Symbol,
					ISIN:             tx.ISIN,
					PurchaseDate:     lot.Date,
					SaleDate:         tx.Date,
					Quantity:         matched,
					BoughtAmount:     utils.RoundEUR(rawBought),
					BoughtCurrency:   "EUR",
					SoldAmount:       utils.RoundEUR(rawSold),
					SoldCurrency:     "EUR",
					ProfitInEUR:      utils.RoundEUR(rawSold.Sub(rawBought)),
					TransactionCosts: fragmentCosts,
					ExchangeRate:     tx.ExchangeRate,
				}
			}

			remaining = remaining.Sub(matched)
			lot.Remaining = lot.Remaining.Sub(matched)
			if lot.Remaining.IsZero() {
				lots[tx.Symbol] = queue[1:]
			}
		}
	}

	result := make([]models.CapitalGain, 0, len(gains))
	for _, gain := range gains {
		result = append(result, *gain)
	}
	sortForReport(result)

	return &models.GainsReport{Gains: result, Warnings: warnings}, nil
}

// sortChronologically orders the batch ascending by the composite point in
// time built from each transaction's date and time fields. The sort is stable:
// equal timestamps keep their input order.
func sortChronologically(transactions []models.Transaction) ([]models.Transaction, error) {
	type entry struct {
		tx models.Transaction
		at time.Time
	}

	entries := make([]entry, 0, len(transactions))
	var rowErrs RowErrors
	for i, tx := range transactions {
		at, err := utils.ParseDateTime(tx.Date, tx.Time)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: i, Err: err})
			continue
		}
		entries = append(entries, entry{tx: tx, at: at})
	}
	if len(rowErrs) > 0 {
		return nil, rowErrs
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].at.Before(entries[j].at)
	})

	ordered := make([]models.Transaction, len(entries))
	for i, e := range entries {
		ordered[i] = e.tx
	}
	return ordered, nil
}

// sortForReport applies the display ordering: symbol ascending, then purchase
// date descending, then sale date descending. Canonical dates compare
// correctly as strings.
func sortForReport(gains []models.CapitalGain) {
	sort.Slice(gains, func(i, j int) bool {
		if gains[i].Symbol != gains[j].Symbol {
			return gains[i].Symbol < gains[j].Symbol
		}
		if gains[i].PurchaseDate != gains[j].PurchaseDate {
			return gains[i].PurchaseDate > gains[j].PurchaseDate
		}
		return gains[i].SaleDate > gains[j].SaleDate
	})
}
