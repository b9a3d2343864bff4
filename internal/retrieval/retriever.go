package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// inventoryPhrases trigger the corpus inventory response instead of a
// similarity search.
var inventoryPhrases = []string{
	"what documents",
	"which reports",
	"available files",
	"what files",
}

// Retriever builds the context block handed to the language model for
// a user query. Index failures degrade to an empty context rather than
// failing the request.
type Retriever struct {
	store  interfaces.IndexStore
	logger arbor.ILogger
}

var _ interfaces.ContextService = (*Retriever)(nil)

// NewRetriever creates a new retriever
func NewRetriever(store interfaces.IndexStore, logger arbor.ILogger) *Retriever {
	return &Retriever{
		store:  store,
		logger: logger,
	}
}

// GetContext returns the context block for a query. Inventory-style
// questions get a listing of the indexed documents; everything else
// gets similarity-ranked chunks.
func (r *Retriever) GetContext(ctx context.Context, query string, limit int) string {
	if isInventoryQuery(query) {
		return r.inventoryContext(ctx)
	}

	result, err := r.store.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to query index for context")
		return ""
	}

	var blocks []string
	for i, document := range result.Documents {
		if i >= len(result.Metadatas) {
			break
		}
		metadata := result.Metadatas[i]
		blocks = append(blocks, fmt.Sprintf("From %s (Page %d, Processed: %s):\n%s",
			metadata.Source, metadata.Page, metadata.ProcessedDate, document))
	}

	return strings.Join(blocks, "\n\n")
}

// CorpusSummary reduces all indexed chunk metadata to one entry per
// source document, taking the highest page number seen as the page
// count.
func (r *Retriever) CorpusSummary(ctx context.Context) (map[string]models.DocumentInfo, error) {
	result, err := r.store.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch indexed documents: %w", err)
	}

	summary := make(map[string]models.DocumentInfo)
	for _, metadata := range result.Metadatas {
		if metadata.Source == "" {
			continue
		}
		info := summary[metadata.Source]
		if metadata.Page > info.TotalPages {
			info.TotalPages = metadata.Page
		}
		if info.ProcessedDate == "" {
			info.ProcessedDate = metadata.ProcessedDate
		}
		summary[metadata.Source] = info
	}
	return summary, nil
}

// inventoryContext renders one block per indexed document
func (r *Retriever) inventoryContext(ctx context.Context) string {
	summary, err := r.CorpusSummary(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to build corpus inventory")
		return ""
	}
	if len(summary) == 0 {
		return "No documents are currently indexed."
	}

	sources := make([]string, 0, len(summary))
	for source := range summary {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	var blocks []string
	for _, source := range sources {
		info := summary[source]
		blocks = append(blocks, fmt.Sprintf("Document: %s\nPages: %d\nProcessed: %s",
			source, info.TotalPages, info.ProcessedDate))
	}

	return "Available documents:\n\n" + strings.Join(blocks, "\n\n")
}

func isInventoryQuery(query string) bool {
	lowered := strings.ToLower(query)
	for _, phrase := range inventoryPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
