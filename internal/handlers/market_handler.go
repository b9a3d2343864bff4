package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/market"
)

// MarketHandler handles market data HTTP requests
type MarketHandler struct {
	client *market.Client
	logger arbor.ILogger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(client *market.Client, logger arbor.ILogger) *MarketHandler {
	return &MarketHandler{
		client: client,
		logger: logger,
	}
}

// AggsHandler handles GET /api/market/aggs/{ticker}?range= requests
func (h *MarketHandler) AggsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ticker := strings.TrimPrefix(r.URL.Path, "/api/market/aggs/")
	ticker = strings.Trim(ticker, "/")
	parsed := common.ParseTicker(ticker)
	if !parsed.IsValid() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Valid ticker is required",
		})
		return
	}

	timeRange := r.URL.Query().Get("time_range")
	if timeRange == "" {
		timeRange = "1M"
	}

	result, err := h.client.GetAggregates(r.Context(), parsed.Code, timeRange)
	if err != nil {
		h.logger.Error().Err(err).
			Str("ticker", parsed.Code).
			Str("range", timeRange).
			Msg("Failed to fetch aggregates")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}
