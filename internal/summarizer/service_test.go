package summarizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

type fakeCache struct {
	entries map[string]string
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	value, ok := c.entries[key]
	if !ok {
		return "", interfaces.ErrKeyNotFound
	}
	return value, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

type fakeLLM struct {
	calls      int
	lastPrompt string
	response   string
}

func (l *fakeLLM) Complete(ctx context.Context, req *interfaces.CompletionRequest) (string, error) {
	l.calls++
	l.lastPrompt = req.Prompt
	return l.response, nil
}

func (l *fakeLLM) HealthCheck(ctx context.Context) error { return nil }
func (l *fakeLLM) Provider() string                      { return "fake" }
func (l *fakeLLM) Close() error                          { return nil }

type fakeTextExtractor struct {
	calls int
	text  string
}

func (e *fakeTextExtractor) ExtractPages(ctx context.Context, path string) (*interfaces.PDFDocument, error) {
	return &interfaces.PDFDocument{Path: path}, nil
}

func (e *fakeTextExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	e.calls++
	return e.text, nil
}

func testFiling() *models.Filing {
	return &models.Filing{
		Ticker:     "AAPL",
		FormType:   "10-K",
		FilingDate: time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC),
		PathToDoc:  "/data/filings/AAPL/2023/10-K/AAPL_10-K_2023.pdf",
	}
}

func newTestService(extractor *fakeTextExtractor, llm *fakeLLM, cache *fakeCache) *Service {
	config := &common.SummaryConfig{CacheTTL: time.Hour, MaxPromptLen: 100000}
	return NewService(config, extractor, llm, cache, arbor.NewLogger())
}

func TestSummarizeCachesResult(t *testing.T) {
	extractor := &fakeTextExtractor{text: "Risk Factors\nSupply chain exposure is significant.\nLegal Proceedings\nNothing material."}
	llm := &fakeLLM{response: "The company flags supply chain risk."}
	cache := newFakeCache()
	service := newTestService(extractor, llm, cache)

	first, err := service.Summarize(context.Background(), testFiling())
	require.NoError(t, err)
	assert.Equal(t, "The company flags supply chain risk.", first)

	second, err := service.Summarize(context.Background(), testFiling())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// The second call must be served entirely from cache
	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, 1, cache.sets)
}

func TestSummarizeCacheKeyPerFilingDate(t *testing.T) {
	extractor := &fakeTextExtractor{text: "Risk Factors\nSome risk.\nLegal Proceedings\nNone."}
	llm := &fakeLLM{response: "summary"}
	cache := newFakeCache()
	service := newTestService(extractor, llm, cache)

	_, err := service.Summarize(context.Background(), testFiling())
	require.NoError(t, err)

	_, cached := cache.entries["summary_aapl_2023-11-03"]
	assert.True(t, cached, "cache key is summary_<ticker>_<date>")
}

func TestSummarizePromptUsesSections(t *testing.T) {
	extractor := &fakeTextExtractor{text: "Risk Factors\nSupply chain exposure.\nLegal Proceedings\nVarious lawsuits."}
	llm := &fakeLLM{response: "summary"}
	service := newTestService(extractor, llm, newFakeCache())

	_, err := service.Summarize(context.Background(), testFiling())
	require.NoError(t, err)

	assert.Contains(t, llm.lastPrompt, "Filing: AAPL 10-K filed 2023-11-03")
	assert.Contains(t, llm.lastPrompt, "=== Risk Factors ===")
	assert.Contains(t, llm.lastPrompt, "Supply chain exposure.")
	assert.Contains(t, llm.lastPrompt, "=== Legal Proceedings ===")
}

func TestSummarizePromptFallsBackToFigures(t *testing.T) {
	extractor := &fakeTextExtractor{text: "Total revenues of $394,328 million grew. Net income was $96,995 million."}
	llm := &fakeLLM{response: "summary"}
	service := newTestService(extractor, llm, newFakeCache())

	_, err := service.Summarize(context.Background(), testFiling())
	require.NoError(t, err)

	assert.Contains(t, llm.lastPrompt, "=== Revenue ===")
	assert.Contains(t, llm.lastPrompt, "$394,328 million")
	assert.Contains(t, llm.lastPrompt, "=== Net Income ===")
}

func TestSummarizePromptFallsBackToRawText(t *testing.T) {
	extractor := &fakeTextExtractor{text: "A plain narrative with no headings and no numbers worth noting."}
	llm := &fakeLLM{response: "summary"}
	service := newTestService(extractor, llm, newFakeCache())

	_, err := service.Summarize(context.Background(), testFiling())
	require.NoError(t, err)

	assert.Contains(t, llm.lastPrompt, "A plain narrative with no headings")
	assert.NotContains(t, llm.lastPrompt, "===")
}

func TestSummarizePromptCapped(t *testing.T) {
	long := make([]byte, 0, 60000)
	for len(long) < 60000 {
		long = append(long, "Quarterly performance commentary continues at length. "...)
	}
	extractor := &fakeTextExtractor{text: string(long)}
	llm := &fakeLLM{response: "summary"}
	config := &common.SummaryConfig{CacheTTL: time.Hour, MaxPromptLen: 500}
	service := NewService(config, extractor, llm, newFakeCache(), arbor.NewLogger())

	_, err := service.Summarize(context.Background(), testFiling())
	require.NoError(t, err)
	assert.LessOrEqual(t, len(llm.lastPrompt), 500)
}
