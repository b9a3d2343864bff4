package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/ternarybob/quaestor/internal/sections"
)

const (
	// fallbackTextLen is how much cleaned text feeds the prompt when no
	// sections or figures could be extracted.
	fallbackTextLen = 8000

	systemPrompt = "You are a financial analyst. Summarize the key points of the " +
		"following SEC filing excerpts in clear, plain language. Focus on business " +
		"performance, risks, and notable changes."
)

// Service produces cached plain-language summaries of stored filings.
// Extraction degrades through three tiers so a summary is always
// attempted: labeled sections, then headline financial figures, then
// raw cleaned text.
type Service struct {
	config    *common.SummaryConfig
	extractor interfaces.PDFExtractor
	llm       interfaces.LLMService
	cache     interfaces.KeyValueStorage
	logger    arbor.ILogger
}

var _ interfaces.SummaryService = (*Service)(nil)

// NewService creates a new summarizer service
func NewService(
	config *common.SummaryConfig,
	extractor interfaces.PDFExtractor,
	llm interfaces.LLMService,
	cache interfaces.KeyValueStorage,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:    config,
		extractor: extractor,
		llm:       llm,
		cache:     cache,
		logger:    logger,
	}
}

// Summarize returns a summary for the filing, serving from cache when
// one exists. A cache hit skips PDF extraction and the model call
// entirely.
func (s *Service) Summarize(ctx context.Context, filing *models.Filing) (string, error) {
	key := cacheKey(filing)

	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		s.logger.Debug().
			Str("ticker", filing.Ticker).
			Str("key", key).
			Msg("Summary served from cache")
		return cached, nil
	} else if err != nil && !errors.Is(err, interfaces.ErrKeyNotFound) {
		s.logger.Warn().Err(err).Str("key", key).Msg("Summary cache lookup failed")
	}

	text, err := s.extractor.ExtractText(ctx, filing.PathToDoc)
	if err != nil {
		return "", fmt.Errorf("failed to extract filing text: %w", err)
	}

	prompt := s.buildPrompt(filing, text)

	summary, err := s.llm.Complete(ctx, &interfaces.CompletionRequest{
		System: systemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	if err := s.cache.Set(ctx, key, summary, s.config.CacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache summary")
	}

	s.logger.Info().
		Str("ticker", filing.Ticker).
		Str("form_type", filing.FormType).
		Int("summary_length", len(summary)).
		Msg("Filing summarized")

	return summary, nil
}

// buildPrompt assembles the summary prompt from whatever the filing
// text yields, degrading from labeled sections to financial figures to
// raw cleaned text.
func (s *Service) buildPrompt(filing *models.Filing, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Filing: %s %s filed %s\n\n",
		filing.Ticker, filing.FormType, filing.FilingDate.Format("2006-01-02"))

	extracted := sections.ExtractAll(text)
	if len(extracted) == 0 {
		s.logger.Debug().
			Str("ticker", filing.Ticker).
			Msg("No labeled sections found, trying financial figures")
		extracted = sections.ExtractFinancialFigures(text)
	}

	if len(extracted) > 0 {
		for _, section := range extracted {
			fmt.Fprintf(&b, "=== %s ===\n%s\n\n", section.Name, section.Text)
		}
	} else {
		s.logger.Debug().
			Str("ticker", filing.Ticker).
			Msg("No structured content found, falling back to raw text")
		cleaned := sections.CleanText(text)
		if len(cleaned) > fallbackTextLen {
			cleaned = cleaned[:fallbackTextLen]
		}
		b.WriteString(cleaned)
	}

	prompt := b.String()
	if s.config.MaxPromptLen > 0 && len(prompt) > s.config.MaxPromptLen {
		prompt = prompt[:s.config.MaxPromptLen]
	}
	return prompt
}

func cacheKey(filing *models.Filing) string {
	return fmt.Sprintf("summary_%s_%s",
		strings.ToLower(filing.Ticker), filing.FilingDate.Format("2006-01-02"))
}
