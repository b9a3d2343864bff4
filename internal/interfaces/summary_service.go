package interfaces

import (
	"context"

	"github.com/ternarybob/quaestor/internal/models"
)

// SummaryService generates cached natural-language summaries of filings.
type SummaryService interface {
	// Summarize returns a summary of the filing's PDF, serving from the
	// cache when a fresh entry exists for (ticker, filing date).
	Summarize(ctx context.Context, filing *models.Filing) (string, error)
}
