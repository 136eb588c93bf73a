package processors

import "github.com/username/capgains/backend/src/models"

// GainsProcessor turns an unordered transaction ledger into realized capital
// gains. One call is one pure computation: all working state is allocated for
// the call and discarded with it, so concurrent calls never interact.
type GainsProcessor interface {
	Process(transactions []models.Transaction) (*models.GainsReport, error)
}
