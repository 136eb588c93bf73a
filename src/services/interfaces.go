package services

import (
	"errors"

	"github.com/username/capgains/backend/src/models"
)

// ErrProcessingFailed wraps engine failures so handlers can map them to 400s.
var ErrProcessingFailed = errors.New("transaction processing failed")

// GainsService is the application surface over the pure gains engine: it owns
// persistence of imported transaction records, cached report computation, and
// country-code annotation of gain lines. The engine itself stays a pure
// function of its input list.
type GainsService interface {
	// Calculate is the stateless form of the contract: typed transaction
	// records in, typed capital gains out. Nothing is stored.
	Calculate(txs []models.Transaction) (*models.GainsReport, error)

	ImportTransactions(userID int64, txs []models.Transaction) (inserted int, err error)
	GetTransactions(userID int64) ([]models.Transaction, error)
	DeleteTransactions(userID int64) error

	// GetGainsReport computes (or serves from cache) the report over the
	// user's stored ledger, optionally filtered by inclusive sale-date
	// bounds. The filter never mutates the cached report.
	GetGainsReport(userID int64, fromDate, toDate string) (*models.GainsReport, error)
	GetGainsSummary(userID int64, fromDate, toDate string) (*models.GainsSummary, error)

	InvalidateUserCache(userID int64)
}
