package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/capgains/backend/src/database"
	"github.com/username/capgains/backend/src/logger"
	"github.com/username/capgains/backend/src/models"
	"github.com/username/capgains/backend/src/processors"
)

func newTestService(t *testing.T) GainsService {
	t.Helper()
	logger.InitLogger("error")
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	return NewGainsService(processors.NewGainsProcessor(), cache.New(time.Minute, time.Minute))
}

func testTx(date, symbol, qty, price string) models.Transaction {
	return models.Transaction{
		Date:          date,
		Symbol:        symbol,
		ISIN:          "US0378331005",
		Quantity:      decimal.RequireFromString(qty),
		Price:         decimal.RequireFromString(price),
		PriceCurrency: "EUR",
		ExchangeRate:  decimal.NewFromInt(1),
	}
}

func TestImportAndFetchRoundTrip(t *testing.T) {
	svc := newTestService(t)
	const userID = int64(1)

	inserted, err := svc.ImportTransactions(userID, []models.Transaction{
		testTx("2023-01-01", "AAPL", "10", "100.50"),
		testTx("2023-06-01", "AAPL", "-10", "150.25"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	txs, err := svc.GetTransactions(userID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "AAPL", txs[0].Symbol)
	assert.True(t, txs[0].Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, txs[0].Price.Equal(decimal.RequireFromString("100.50")), "price survives storage exactly, got %s", txs[0].Price)
}

func TestImportDeduplicates(t *testing.T) {
	svc := newTestService(t)
	const userID = int64(1)

	batch := []models.Transaction{testTx("2023-01-01", "AAPL", "10", "100")}
	inserted, err := svc.ImportTransactions(userID, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	// Re-importing the identical record is a no-op, not an error.
	inserted, err = svc.ImportTransactions(userID, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	txs, err := svc.GetTransactions(userID)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestImportIsolatedPerUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ImportTransactions(1, []models.Transaction{testTx("2023-01-01", "AAPL", "10", "100")})
	require.NoError(t, err)
	_, err = svc.ImportTransactions(2, []models.Transaction{testTx("2023-01-01", "MSFT", "5", "200")})
	require.NoError(t, err)

	txs, err := svc.GetTransactions(1)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "AAPL", txs[0].Symbol)
}

func TestGetGainsReportFromStoredLedger(t *testing.T) {
	svc := newTestService(t)
	const userID = int64(1)

	_, err := svc.ImportTransactions(userID, []models.Transaction{
		testTx("2023-01-01", "AAPL", "10", "100"),
		testTx("2023-06-01", "AAPL", "-10", "150"),
	})
	require.NoError(t, err)

	report, err := svc.GetGainsReport(userID, "", "")
	require.NoError(t, err)
	require.Len(t, report.Gains, 1)
	assert.True(t, report.Gains[0].ProfitInEUR.Equal(decimal.NewFromInt(500)))

	// Date filter excludes the sale.
	filtered, err := svc.GetGainsReport(userID, "2024-01-01", "")
	require.NoError(t, err)
	assert.Empty(t, filtered.Gains)

	// The cached full report must not have been narrowed by the filtered view.
	full, err := svc.GetGainsReport(userID, "", "")
	require.NoError(t, err)
	assert.Len(t, full.Gains, 1)
}

func TestGetGainsSummary(t *testing.T) {
	svc := newTestService(t)
	const userID = int64(1)

	_, err := svc.ImportTransactions(userID, []models.Transaction{
		testTx("2023-01-01", "AAPL", "10", "100"),
		testTx("2023-06-01", "AAPL", "-10", "150"),
	})
	require.NoError(t, err)

	summary, err := svc.GetGainsSummary(userID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "1500.00", summary.TotalSoldAmount)
	assert.Equal(t, "1000.00", summary.TotalBoughtAmount)
	assert.Equal(t, "500.00", summary.TotalProfitInEUR)
	assert.Equal(t, 1, summary.GainCount)
}

func TestDeleteTransactionsInvalidatesReport(t *testing.T) {
	svc := newTestService(t)
	const userID = int64(1)

	_, err := svc.ImportTransactions(userID, []models.Transaction{
		testTx("2023-01-01", "AAPL", "10", "100"),
		testTx("2023-06-01", "AAPL", "-10", "150"),
	})
	require.NoError(t, err)

	report, err := svc.GetGainsReport(userID, "", "")
	require.NoError(t, err)
	require.Len(t, report.Gains, 1)

	require.NoError(t, svc.DeleteTransactions(userID))

	report, err = svc.GetGainsReport(userID, "", "")
	require.NoError(t, err)
	assert.Empty(t, report.Gains)

	txs, err := svc.GetTransactions(userID)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCalculateStateless(t *testing.T) {
	svc := newTestService(t)

	report, err := svc.Calculate([]models.Transaction{
		testTx("2023-01-01", "AAPL", "10", "100"),
		testTx("2023-06-01", "AAPL", "-10", "150"),
	})
	require.NoError(t, err)
	require.Len(t, report.Gains, 1)

	// Nothing persisted by a stateless calculation.
	txs, err := svc.GetTransactions(1)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCalculateWrapsProcessorError(t *testing.T) {
	svc := newTestService(t)

	bad := testTx("garbage", "AAPL", "10", "100")
	_, err := svc.Calculate([]models.Transaction{bad})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProcessingFailed)
}
