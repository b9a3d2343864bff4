package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// SummaryHandler handles filing summary HTTP requests
type SummaryHandler struct {
	summarizer interfaces.SummaryService
	storage    interfaces.FilingStorage
	logger     arbor.ILogger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(
	summarizer interfaces.SummaryService,
	storage interfaces.FilingStorage,
	logger arbor.ILogger,
) *SummaryHandler {
	return &SummaryHandler{
		summarizer: summarizer,
		storage:    storage,
		logger:     logger,
	}
}

// SummaryHandler handles GET /api/summary/{ticker} requests with an
// optional year query parameter.
func (h *SummaryHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ticker := strings.TrimPrefix(r.URL.Path, "/api/summary/")
	ticker = strings.Trim(ticker, "/")
	if ticker == "" || !common.ParseTicker(ticker).IsValid() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Valid ticker is required",
		})
		return
	}

	var (
		filing *models.Filing
		err    error
	)
	if yearParam := r.URL.Query().Get("year"); yearParam != "" {
		year, convErr := strconv.Atoi(yearParam)
		if convErr != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   "Invalid year parameter",
			})
			return
		}
		filing, err = h.storage.GetFilingByYear(ticker, year)
	} else {
		filing, err = h.storage.GetFiling(ticker)
	}

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, interfaces.ErrFilingNotFound) {
			status = http.StatusNotFound
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), filing)
	if err != nil {
		h.logger.Error().Err(err).
			Str("ticker", filing.Ticker).
			Msg("Failed to summarize filing")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Cannot generate summary for this filing",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":     true,
		"ticker":      filing.Ticker,
		"form_type":   filing.FormType,
		"filing_date": filing.FilingDate,
		"summary":     summary,
	})
}
