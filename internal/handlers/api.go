package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
)

// APIHandler serves version, health, and fallback endpoints.
type APIHandler struct {
	retriever interfaces.ContextService
	indexMode string
	logger    arbor.ILogger
}

func NewAPIHandler(retriever interfaces.ContextService, indexMode string) *APIHandler {
	return &APIHandler{
		retriever: retriever,
		indexMode: indexMode,
		logger:    common.GetLogger(),
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.Build,
		"git_commit": common.GitCommit,
	})
}

// HealthHandler reports service health plus the current corpus size.
// An unreachable index degrades the status rather than failing the
// endpoint, so load balancers still get a parseable response.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := "ok"
	documents := 0
	summary, err := h.retriever.CorpusSummary(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Health check could not reach the index")
		status = "degraded"
	} else {
		documents = len(summary)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"index_mode": h.indexMode,
		"documents":  documents,
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
