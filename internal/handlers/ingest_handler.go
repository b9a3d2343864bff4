package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
)

// IngestHandler handles document ingestion HTTP requests
type IngestHandler struct {
	ingestion interfaces.IngestionService
	retriever interfaces.ContextService
	logger    arbor.ILogger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(
	ingestion interfaces.IngestionService,
	retriever interfaces.ContextService,
	logger arbor.ILogger,
) *IngestHandler {
	return &IngestHandler{
		ingestion: ingestion,
		retriever: retriever,
		logger:    logger,
	}
}

// ReconcileHandler handles POST /api/ingest/reconcile requests. It runs
// a reconcile pass inline and reports the resulting corpus.
func (h *IngestHandler) ReconcileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.logger.Info().Msg("Reconcile requested")

	if err := h.ingestion.Reconcile(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Reconcile failed")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	summary, err := h.retriever.CorpusSummary(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to summarize corpus after reconcile")
		summary = nil
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"documents": summary,
	})
}

// DocumentsHandler handles GET /api/ingest/documents requests,
// returning the per-document corpus inventory.
func (h *IngestHandler) DocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.retriever.CorpusSummary(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to summarize corpus")
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
		"success":   true,
		"count":     len(summary),
		"documents": summary,
	})
}
