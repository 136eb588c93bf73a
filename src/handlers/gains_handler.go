package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/capgains/backend/src/config"
	"github.com/username/capgains/backend/src/logger"
	"github.com/username/capgains/backend/src/models"
	"github.com/username/capgains/backend/src/processors"
	"github.com/username/capgains/backend/src/security/validation"
	"github.com/username/capgains/backend/src/services"
	"github.com/username/capgains/backend/src/utils"
)

type GainsHandler struct {
	gainsService services.GainsService
}

func NewGainsHandler(service services.GainsService) *GainsHandler {
	return &GainsHandler{gainsService: service}
}

// HandleCalculateGains is the stateless form of the engine contract: a JSON
// array of typed transaction records in, a gains report out. Nothing is
// persisted.
func (h *GainsHandler) HandleCalculateGains(w http.ResponseWriter, r *http.Request) {
	var txs []models.Transaction
	r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&txs); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateTransactionRecords(txs); err != nil {
		logger.L.Warn("Gains calculation rejected by validation", "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.gainsService.Calculate(txs)
	if err != nil {
		if errors.Is(err, services.ErrProcessingFailed) || errors.Is(err, processors.ErrMalformedRows) {
			utils.SendJSONError(w, fmt.Sprintf("Error processing transactions: %v", err), http.StatusBadRequest)
			return
		}
		logger.L.Error("Internal error calculating gains", "error", err)
		utils.SendJSONError(w, "An internal error occurred while calculating gains.", http.StatusInternalServerError)
		return
	}

	writeReport(w, r, report)
}

// HandleGetGains computes (or serves cached) gains over the user's stored
// ledger, optionally restricted to an inclusive sale-date range.
func (h *GainsHandler) HandleGetGains(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	fromDate, toDate, err := saleDateRange(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.gainsService.GetGainsReport(userID, fromDate, toDate)
	if err != nil {
		if errors.Is(err, services.ErrProcessingFailed) {
			utils.SendJSONError(w, fmt.Sprintf("Stored ledger could not be processed: %v", err), http.StatusConflict)
			return
		}
		logger.L.Error("Error retrieving gains report", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error retrieving gains report", http.StatusInternalServerError)
		return
	}

	writeReport(w, r, report)
}

func (h *GainsHandler) HandleGetGainsSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	fromDate, toDate, err := saleDateRange(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.gainsService.GetGainsSummary(userID, fromDate, toDate)
	if err != nil {
		logger.L.Error("Error retrieving gains summary", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error retrieving gains summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		logger.L.Error("Error encoding gains summary response", "userID", userID, "error", err)
	}
}

// saleDateRange reads optional ?from= and ?to= query params and insists on
// the canonical date form so the lexicographic filter stays correct.
func saleDateRange(r *http.Request) (string, string, error) {
	fromDate := r.URL.Query().Get("from")
	toDate := r.URL.Query().Get("to")
	if fromDate != "" {
		if _, err := utils.ParseDate(fromDate); err != nil {
			return "", "", fmt.Errorf("invalid 'from' parameter: %v", err)
		}
	}
	if toDate != "" {
		if _, err := utils.ParseDate(toDate); err != nil {
			return "", "", fmt.Errorf("invalid 'to' parameter: %v", err)
		}
	}
	return fromDate, toDate, nil
}

// writeReport sends a gains report with ETag support so clients polling the
// ledger can skip unchanged payloads.
func writeReport(w http.ResponseWriter, r *http.Request, report *models.GainsReport) {
	if report.Gains == nil {
		report.Gains = []models.CapitalGain{}
	}
	if report.Warnings == nil {
		report.Warnings = []models.SaleWarning{}
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if currentETag, err := utils.GenerateETag(report); err == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("%q", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, clientETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(clientETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		logger.L.Error("Error encoding gains report response", "error", err)
	}
}
