package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/capgains/backend/src/config"
	"github.com/username/capgains/backend/src/logger"
	"github.com/username/capgains/backend/src/models"
	"github.com/username/capgains/backend/src/security/validation"
	"github.com/username/capgains/backend/src/services"
	"github.com/username/capgains/backend/src/utils"
)

type TransactionHandler struct {
	gainsService services.GainsService
}

func NewTransactionHandler(service services.GainsService) *TransactionHandler {
	return &TransactionHandler{gainsService: service}
}

// HandleImportTransactions appends typed transaction records to the user's
// stored ledger. Records failing well-formedness reject the whole batch with
// every offending row reported.
func (h *TransactionHandler) HandleImportTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var txs []models.Transaction
	r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&txs); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateTransactionRecords(txs); err != nil {
		logger.L.Warn("Transaction import rejected by validation", "userID", userID, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	inserted, err := h.gainsService.ImportTransactions(userID, txs)
	if err != nil {
		if errors.Is(err, services.ErrProcessingFailed) {
			utils.SendJSONError(w, fmt.Sprintf("Error processing transactions: %v", err), http.StatusBadRequest)
			return
		}
		logger.L.Error("Internal error importing transactions", "userID", userID, "error", err)
		utils.SendJSONError(w, "An internal error occurred while importing transactions.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{
		"received": len(txs),
		"imported": inserted,
	})
}

func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	txs, err := h.gainsService.GetTransactions(userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying transactions for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(txs); err != nil {
		logger.L.Error("Error encoding transactions response", "userID", userID, "error", err)
	}
}

func (h *TransactionHandler) HandleDeleteAllTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := h.gainsService.DeleteTransactions(userID); err != nil {
		logger.L.Error("Error deleting transactions", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error deleting transactions", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Deleted all transactions for user", "userID", userID)
	w.WriteHeader(http.StatusNoContent)
}
