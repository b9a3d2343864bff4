package interfaces

import (
	"context"

	"github.com/ternarybob/quaestor/internal/models"
)

// ContextService assembles query-time context from the index.
type ContextService interface {
	// GetContext returns a text blob of relevant chunks for the query.
	// It never fails the caller; internal errors yield the empty string.
	GetContext(ctx context.Context, query string, limit int) string

	// CorpusSummary returns per-document page counts and processing
	// dates for every indexed source filename.
	CorpusSummary(ctx context.Context) (map[string]models.DocumentInfo, error)
}
