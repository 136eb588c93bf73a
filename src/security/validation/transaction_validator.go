package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/username/capgains/backend/src/models"
	"github.com/username/capgains/backend/src/utils"
)

// ErrValidationFailed marks any well-formedness failure in an inbound payload.
var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	MaxSymbolLength       = 100
	MaxISINLength         = 12
	MaxCurrencyCodeLength = 3

	// Generous ceiling on absolute monetary/quantity values; anything beyond
	// it is a data defect, not a brokerage ledger.
	maxAbsValue = 1e12
)

// ValidateStringNotEmpty checks that a string is not blank.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks a string's UTF-8 character count.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

func validateDecimalRange(val decimal.Decimal, fieldName string, allowNegative bool) error {
	if !allowNegative && val.IsNegative() {
		return fmt.Errorf("%w: %s cannot be negative", ErrValidationFailed, fieldName)
	}
	if val.Abs().GreaterThan(decimal.NewFromFloat(maxAbsValue)) {
		return fmt.Errorf("%w: %s is out of range", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateTransactionRecord enforces the well-formedness contract the engine
// assumes: canonical date/time fields, a non-zero quantity, a positive
// exchange rate, sane magnitudes and lengths. Text fields are sanitized in
// place. The engine itself never re-validates.
func ValidateTransactionRecord(tx *models.Transaction) error {
	tx.Symbol = SanitizeText(StripUnprintable(strings.TrimSpace(tx.Symbol)))
	tx.ISIN = SanitizeText(StripUnprintable(strings.TrimSpace(tx.ISIN)))
	tx.PriceCurrency = strings.ToUpper(strings.TrimSpace(tx.PriceCurrency))

	if err := ValidateStringNotEmpty(tx.Symbol, "symbol"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(tx.Symbol, MaxSymbolLength, "symbol"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(tx.ISIN, MaxISINLength, "isin"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(tx.PriceCurrency, MaxCurrencyCodeLength, "priceCurrency"); err != nil {
		return err
	}

	if _, err := utils.ParseDateTime(tx.Date, tx.Time); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if tx.Quantity.IsZero() {
		return fmt.Errorf("%w: quantity must not be zero", ErrValidationFailed)
	}
	if err := validateDecimalRange(tx.Quantity, "quantity", true); err != nil {
		return err
	}
	if err := validateDecimalRange(tx.Price, "price", false); err != nil {
		return err
	}
	if !tx.ExchangeRate.IsPositive() {
		return fmt.Errorf("%w: exchangeRate must be positive", ErrValidationFailed)
	}
	if err := validateDecimalRange(tx.ExchangeRate, "exchangeRate", false); err != nil {
		return err
	}
	if err := validateDecimalRange(tx.TransactionCosts, "transactionCosts", false); err != nil {
		return err
	}
	if err := validateDecimalRange(tx.ValueEUR, "valueEUR", true); err != nil {
		return err
	}
	return nil
}

// ValidateTransactionRecords validates a whole batch and collects every
// defect, so one round trip reports all offending rows.
func ValidateTransactionRecords(txs []models.Transaction) error {
	var msgs []string
	for i := range txs {
		if err := ValidateTransactionRecord(&txs[i]); err != nil {
			msgs = append(msgs, fmt.Sprintf("row %d: %v", i, err))
		}
	}
	if len(msgs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(msgs, "; "))
	}
	return nil
}
