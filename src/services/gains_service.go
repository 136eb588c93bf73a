package services

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/capgains/backend/src/database"
	"github.com/username/capgains/backend/src/logger"
	"github.com/username/capgains/backend/src/models"
	"github.com/username/capgains/backend/src/processors"
	"github.com/username/capgains/backend/src/utils"
)

const (
	ckGainsReport = "res_gains_report_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type gainsServiceImpl struct {
	processor   processors.GainsProcessor
	reportCache *cache.Cache
}

func NewGainsService(processor processors.GainsProcessor, reportCache *cache.Cache) GainsService {
	return &gainsServiceImpl{
		processor:   processor,
		reportCache: reportCache,
	}
}

func (s *gainsServiceImpl) Calculate(txs []models.Transaction) (*models.GainsReport, error) {
	report, err := s.processor.Process(txs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
	}
	annotateCountryCodes(report.Gains)
	return report, nil
}

func (s *gainsServiceImpl) ImportTransactions(userID int64, txs []models.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO transactions (user_id, date, time, symbol, isin, quantity, price, price_currency, exchange_rate, transaction_costs, value_eur, hash_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, tx := range txs {
		hashID := transactionHash(tx)
		_, err := stmt.Exec(userID, tx.Date, tx.Time, tx.Symbol, tx.ISIN,
			tx.Quantity.String(), tx.Price.String(), tx.PriceCurrency,
			tx.ExchangeRate.String(), tx.TransactionCosts.String(),
			tx.ValueEUR.String(), hashID)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
				logger.L.Debug("Skipping duplicate transaction on import", "userID", userID, "hash_id", hashID)
				continue
			}
			return 0, fmt.Errorf("error inserting transaction (%s %s): %w", tx.Symbol, tx.Date, err)
		}
		inserted++
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing transactions: %w", err)
	}

	s.InvalidateUserCache(userID)
	logger.L.Info("Imported transactions", "userID", userID, "received", len(txs), "inserted", inserted)
	return inserted, nil
}

func (s *gainsServiceImpl) GetTransactions(userID int64) ([]models.Transaction, error) {
	return fetchUserTransactions(userID)
}

func (s *gainsServiceImpl) DeleteTransactions(userID int64) error {
	if _, err := database.DB.Exec(`DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("error deleting transactions for userID %d: %w", userID, err)
	}
	s.InvalidateUserCache(userID)
	return nil
}

func (s *gainsServiceImpl) GetGainsReport(userID int64, fromDate, toDate string) (*models.GainsReport, error) {
	report, err := s.getFullReport(userID)
	if err != nil {
		return nil, err
	}
	if fromDate == "" && toDate == "" {
		return report, nil
	}
	// Filtered view only; the cached report keeps every gain.
	return &models.GainsReport{
		Gains:    processors.FilterGainsBySaleDate(report.Gains, fromDate, toDate),
		Warnings: report.Warnings,
	}, nil
}

func (s *gainsServiceImpl) GetGainsSummary(userID int64, fromDate, toDate string) (*models.GainsSummary, error) {
	report, err := s.GetGainsReport(userID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	summary := processors.SummarizeGains(report.Gains)
	return &summary, nil
}

func (s *gainsServiceImpl) InvalidateUserCache(userID int64) {
	s.reportCache.Delete(fmt.Sprintf(ckGainsReport, userID))
	logger.L.Info("Invalidated gains report cache for user", "userID", userID)
}

// getFullReport serves the unfiltered report from cache, recomputing from the
// stored ledger on a miss.
func (s *gainsServiceImpl) getFullReport(userID int64) (*models.GainsReport, error) {
	cacheKey := fmt.Sprintf(ckGainsReport, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for gains report", "userID", userID)
		return cached.(*models.GainsReport), nil
	}

	logger.L.Info("Cache miss for gains report, recalculating from DB", "userID", userID)
	txs, err := fetchUserTransactions(userID)
	if err != nil {
		return nil, err
	}

	report, err := s.Calculate(txs)
	if err != nil {
		return nil, err
	}

	s.reportCache.Set(cacheKey, report, DefaultCacheExpiration)
	return report, nil
}

func annotateCountryCodes(gains []models.CapitalGain) {
	for i := range gains {
		gains[i].CountryCode = utils.GetCountryCodeString(gains[i].ISIN)
	}
}

// transactionHash fingerprints a record's source fields to dedupe re-imports.
func transactionHash(tx models.Transaction) string {
	input := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s",
		tx.Date, tx.Time, tx.Symbol, tx.ISIN,
		tx.Quantity.String(), tx.Price.String(), tx.ExchangeRate.String(), tx.TransactionCosts.String())
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

func fetchUserTransactions(userID int64) ([]models.Transaction, error) {
	logger.L.Debug("Fetching transactions from DB", "userID", userID)
	rows, err := database.DB.Query(`SELECT date, time, symbol, isin, quantity, price, price_currency, exchange_rate, transaction_costs, value_eur FROM transactions WHERE user_id = ? ORDER BY date ASC, time ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions for userID %d: %w", userID, err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		tx, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("error scanning transaction row for userID %d: %w", userID, scanErr)
		}
		transactions = append(transactions, tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transaction rows for userID %d: %w", userID, err)
	}
	return transactions, nil
}

// Decimals are stored as their exact string form; a value that fails to parse
// back is corruption, not user input, and surfaces as an error.
func scanTransaction(rows *sql.Rows) (models.Transaction, error) {
	var tx models.Transaction
	var quantity, price, exchangeRate, transactionCosts, valueEUR string
	if err := rows.Scan(&tx.Date, &tx.Time, &tx.Symbol, &tx.ISIN,
		&quantity, &price, &tx.PriceCurrency, &exchangeRate, &transactionCosts, &valueEUR); err != nil {
		return tx, err
	}

	var err error
	if tx.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return tx, fmt.Errorf("stored quantity %q: %w", quantity, err)
	}
	if tx.Price, err = decimal.NewFromString(price); err != nil {
		return tx, fmt.Errorf("stored price %q: %w", price, err)
	}
	if tx.ExchangeRate, err = decimal.NewFromString(exchangeRate); err != nil {
		return tx, fmt.Errorf("stored exchange_rate %q: %w", exchangeRate, err)
	}
	if tx.TransactionCosts, err = decimal.NewFromString(transactionCosts); err != nil {
		return tx, fmt.Errorf("stored transaction_costs %q: %w", transactionCosts, err)
	}
	if tx.ValueEUR, err = decimal.NewFromString(valueEUR); err != nil {
		return tx, fmt.Errorf("stored value_eur %q: %w", valueEUR, err)
	}
	return tx, nil
}
