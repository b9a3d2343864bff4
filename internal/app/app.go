package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/chat"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/filings"
	"github.com/ternarybob/quaestor/internal/handlers"
	"github.com/ternarybob/quaestor/internal/index/chroma"
	"github.com/ternarybob/quaestor/internal/index/memory"
	"github.com/ternarybob/quaestor/internal/ingest"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/llm"
	"github.com/ternarybob/quaestor/internal/market"
	"github.com/ternarybob/quaestor/internal/pdf"
	"github.com/ternarybob/quaestor/internal/retrieval"
	storagebadger "github.com/ternarybob/quaestor/internal/storage/badger"
	"github.com/ternarybob/quaestor/internal/summarizer"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Core pipeline services
	IndexStore       interfaces.IndexStore
	PDFExtractor     interfaces.PDFExtractor
	IngestionService interfaces.IngestionService
	ContextService   interfaces.ContextService

	// AI services
	LLMService     interfaces.LLMService
	ChatService    interfaces.ChatService
	SummaryService interfaces.SummaryService

	// Domain services
	FilingsService *filings.Service
	MarketClient   *market.Client
	MarketRelay    *market.Relay

	// HTTP handlers
	APIHandler     *handlers.APIHandler
	ChatHandler    *handlers.ChatHandler
	IngestHandler  *handlers.IngestHandler
	FilingsHandler *handlers.FilingsHandler
	SummaryHandler *handlers.SummaryHandler
	MarketHandler  *handlers.MarketHandler
	WSHandler      *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("index_mode", cfg.Index.Mode).
		Str("llm_provider", string(cfg.LLM.DefaultProvider)).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := storagebadger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices wires the document pipeline, AI, and market services
func (a *App) initServices() error {
	switch a.Config.Index.Mode {
	case "memory":
		a.IndexStore = memory.NewStore()
	default:
		a.IndexStore = chroma.NewClient(
			a.Config.Index.Collection,
			chroma.WithBaseURL(a.Config.Index.URL),
			chroma.WithLogger(a.Logger),
		)
	}

	a.PDFExtractor = pdf.NewExtractor(a.Logger)

	a.IngestionService = ingest.NewController(
		&a.Config.Ingest,
		a.PDFExtractor,
		a.IndexStore,
		a.Logger,
	)

	a.ContextService = retrieval.NewRetriever(a.IndexStore, a.Logger)

	llmService, err := llm.NewService(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM service: %w", err)
	}
	a.LLMService = llmService

	a.ChatService = chat.NewService(
		&a.Config.Ingest,
		a.IngestionService,
		a.ContextService,
		a.LLMService,
		a.Logger,
	)

	a.SummaryService = summarizer.NewService(
		&a.Config.Summary,
		a.PDFExtractor,
		a.LLMService,
		a.StorageManager.KeyValueStorage(),
		a.Logger,
	)

	a.FilingsService = filings.NewService(
		&a.Config.Filings,
		a.StorageManager.FilingStorage(),
		a.Logger,
	)

	a.MarketClient = market.NewClient(
		a.Config.Market.APIKey,
		market.WithBaseURL(a.Config.Market.BaseURL),
		market.WithRateLimit(a.Config.Market.RateLimit),
		market.WithLogger(a.Logger),
	)
	a.MarketRelay = market.NewRelay(&a.Config.Market, a.Logger)

	return nil
}

// initHandlers wires HTTP handlers onto the services
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.ContextService, a.Config.Index.Mode)
	a.ChatHandler = handlers.NewChatHandler(a.ChatService, a.Logger)
	a.IngestHandler = handlers.NewIngestHandler(a.IngestionService, a.ContextService, a.Logger)
	a.FilingsHandler = handlers.NewFilingsHandler(a.FilingsService, a.StorageManager.FilingStorage(), a.Logger)
	a.SummaryHandler = handlers.NewSummaryHandler(a.SummaryService, a.StorageManager.FilingStorage(), a.Logger)
	a.MarketHandler = handlers.NewMarketHandler(a.MarketClient, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.MarketRelay, a.Logger)
}

// Initialize runs the startup reconcile pass, verifies the indexed
// corpus, and starts the market relay. Reconcile failures are logged
// rather than fatal; the server can still answer from the existing
// index.
func (a *App) Initialize(ctx context.Context) error {
	a.Logger.Info().Msg("Starting initial document check and verification")

	reconcileCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	if err := a.IngestionService.Reconcile(reconcileCtx); err != nil {
		a.Logger.Error().Err(err).Msg("Initial reconcile failed")
	}

	summary, err := a.ContextService.CorpusSummary(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("Document verification failed")
	} else if len(summary) == 0 {
		a.Logger.Warn().Msg("No documents found in index, check the watched directory")
	} else {
		for source, info := range summary {
			a.Logger.Info().
				Str("document", source).
				Int("pages", info.TotalPages).
				Str("processed", info.ProcessedDate).
				Msg("Verified indexed document")
		}
		a.Logger.Info().
			Int("documents", len(summary)).
			Msg("Document verification complete")
	}

	if err := a.MarketRelay.Start(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Market data relay failed to start")
	}

	return nil
}

// Close shuts down all services and storage
func (a *App) Close() error {
	a.Logger.Info().Msg("Shutting down application")

	a.MarketRelay.Stop()

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	return nil
}
