package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
)

// apologyResponse is returned to the user when the language model call
// fails; chat never surfaces a raw provider error.
const apologyResponse = "I'm sorry, but I encountered an error while processing your request."

// Service answers questions over the indexed document corpus. Every
// request runs a reconcile pass first so answers always reflect the
// current contents of the watched directory.
type Service struct {
	config    *common.IngestConfig
	ingestion interfaces.IngestionService
	retriever interfaces.ContextService
	llm       interfaces.LLMService
	logger    arbor.ILogger
}

var _ interfaces.ChatService = (*Service)(nil)

// NewService creates a new chat service
func NewService(
	config *common.IngestConfig,
	ingestion interfaces.IngestionService,
	retriever interfaces.ContextService,
	llm interfaces.LLMService,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:    config,
		ingestion: ingestion,
		retriever: retriever,
		llm:       llm,
		logger:    logger,
	}
}

// Chat generates an answer for the user's message. Reconcile and
// retrieval failures degrade the answer rather than failing the
// request; only an empty message is rejected.
func (s *Service) Chat(ctx context.Context, req *interfaces.ChatRequest) (*interfaces.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("message cannot be empty")
	}

	// Pick up any new or modified documents before answering
	if err := s.ingestion.Reconcile(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Reconcile failed before chat, answering from existing index")
	}

	docContext := s.retriever.GetContext(ctx, message, s.config.ContextResults)

	response, err := s.llm.Complete(ctx, &interfaces.CompletionRequest{
		System: s.systemPrompt(ctx),
		Prompt: fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nProvide a detailed answer based on the context above and your knowledge of available documents:",
			docContext, message),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Chat completion failed")
		return &interfaces.ChatResponse{
			Response: apologyResponse,
			Provider: s.llm.Provider(),
		}, nil
	}

	return &interfaces.ChatResponse{
		Response: response,
		Provider: s.llm.Provider(),
	}, nil
}

// HealthCheck verifies the underlying language model is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.llm.HealthCheck(ctx)
}

// systemPrompt embeds the current document inventory so the model can
// answer availability questions accurately.
func (s *Service) systemPrompt(ctx context.Context) string {
	var inventory strings.Builder

	summary, err := s.retriever.CorpusSummary(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to build document inventory for system prompt")
	} else {
		sources := make([]string, 0, len(summary))
		for source := range summary {
			sources = append(sources, source)
		}
		sort.Strings(sources)
		for _, source := range sources {
			info := summary[source]
			fmt.Fprintf(&inventory, "- %s (%d pages, processed: %s)\n",
				source, info.TotalPages, info.ProcessedDate)
		}
	}

	return fmt.Sprintf(`You are a helpful assistant analyzing EDGAR financial documents.
You have access to the following documents:
%s
Provide detailed, accurate responses based on the context provided.
When discussing document availability, always refer to the complete list above.
If the information isn't in the immediate context, say so but mention if it might be available in one of the listed documents.`,
		inventory.String())
}
