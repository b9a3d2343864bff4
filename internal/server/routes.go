package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (live market ticks)
	mux.HandleFunc("/ws/market", s.app.WSHandler.HandleWebSocket)

	// API routes - Chat (RAG-enabled chat)
	mux.HandleFunc("/api/chat", s.app.ChatHandler.ChatHandler)
	mux.HandleFunc("/api/chat/health", s.app.ChatHandler.HealthHandler)

	// API routes - Ingestion
	mux.HandleFunc("/api/ingest/reconcile", s.app.IngestHandler.ReconcileHandler)
	mux.HandleFunc("/api/ingest/documents", s.app.IngestHandler.DocumentsHandler)

	// API routes - Filings
	mux.HandleFunc("/api/filings", s.app.FilingsHandler.ListHandler)
	mux.HandleFunc("/api/filings/fetch", s.app.FilingsHandler.FetchHandler)
	mux.HandleFunc("/api/filings/", s.app.FilingsHandler.GetHandler) // GET /{ticker}?year=

	// API routes - Filing summaries
	mux.HandleFunc("/api/summary/", s.app.SummaryHandler.SummaryHandler) // GET /{ticker}?year=

	// API routes - Market data
	mux.HandleFunc("/api/market/aggs/", s.app.MarketHandler.AggsHandler) // GET /{ticker}?time_range=

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
