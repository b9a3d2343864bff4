package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/filings"
	"github.com/ternarybob/quaestor/internal/interfaces"
)

// FilingsHandler handles SEC filing HTTP requests
type FilingsHandler struct {
	service *filings.Service
	storage interfaces.FilingStorage
	logger  arbor.ILogger
}

// NewFilingsHandler creates a new filings handler
func NewFilingsHandler(service *filings.Service, storage interfaces.FilingStorage, logger arbor.ILogger) *FilingsHandler {
	return &FilingsHandler{
		service: service,
		storage: storage,
		logger:  logger,
	}
}

// fetchRequest is the POST /api/filings/fetch payload. An empty ticker
// fetches the whole constituents list.
type fetchRequest struct {
	Ticker   string `json:"ticker"`
	FormType string `json:"form_type"`
	Year     int    `json:"year"`
}

// ListHandler handles GET /api/filings requests
func (h *FilingsHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list, err := h.storage.ListFilings()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list filings")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"count":   len(list),
		"filings": list,
	})
}

// FetchHandler handles POST /api/filings/fetch requests
func (h *FilingsHandler) FetchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	if req.FormType == "" {
		req.FormType = "10-K"
	}
	if req.Year == 0 {
		req.Year = time.Now().Year()
	}

	var (
		downloaded int
		err        error
	)
	if req.Ticker == "" {
		downloaded, err = h.service.FetchAll(r.Context(), req.FormType, req.Year)
	} else {
		downloaded, err = h.service.FetchTicker(r.Context(), req.Ticker, req.FormType, req.Year)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Filing fetch failed")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    false,
			"downloaded": downloaded,
			"error":      err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    true,
		"downloaded": downloaded,
	})
}

// GetHandler handles GET /api/filings/{ticker} requests with an
// optional year query parameter.
func (h *FilingsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ticker := strings.TrimPrefix(r.URL.Path, "/api/filings/")
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
		filing interface{}
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

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"filing":  filing,
	})
}
