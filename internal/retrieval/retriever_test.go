package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

type mockIndexStore struct {
	getFunc     func(ctx context.Context, filter map[string]string) (*interfaces.IndexResult, error)
	queryFunc   func(ctx context.Context, text string, n int) (*interfaces.QueryResult, error)
	queryCalled bool
}

func (m *mockIndexStore) Get(ctx context.Context, filter map[string]string) (*interfaces.IndexResult, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, filter)
	}
	return &interfaces.IndexResult{}, nil
}

func (m *mockIndexStore) Query(ctx context.Context, text string, n int) (*interfaces.QueryResult, error) {
	m.queryCalled = true
	if m.queryFunc != nil {
		return m.queryFunc(ctx, text, n)
	}
	return &interfaces.QueryResult{}, nil
}

func (m *mockIndexStore) Add(ctx context.Context, ids []string, documents []string, metadatas []models.ChunkMetadata) error {
	return nil
}

func (m *mockIndexStore) Delete(ctx context.Context, ids []string) error {
	return nil
}

func TestGetContextFormatsChunkBlocks(t *testing.T) {
	store := &mockIndexStore{
		queryFunc: func(ctx context.Context, text string, n int) (*interfaces.QueryResult, error) {
			assert.Equal(t, 5, n)
			return &interfaces.QueryResult{
				Documents: []string{"Revenue grew 12%.", "Risk factors include supply chain."},
				Metadatas: []models.ChunkMetadata{
					{Source: "aapl_10-K_2023.pdf", Page: 4, ProcessedDate: "2023-11-05"},
					{Source: "msft_10-K_2023.pdf", Page: 17, ProcessedDate: "2023-11-06"},
				},
			}, nil
		},
	}
	retriever := NewRetriever(store, arbor.NewLogger())

	block := retriever.GetContext(context.Background(), "how did revenue do", 5)

	expected := "From aapl_10-K_2023.pdf (Page 4, Processed: 2023-11-05):\nRevenue grew 12%." +
		"\n\n" +
		"From msft_10-K_2023.pdf (Page 17, Processed: 2023-11-06):\nRisk factors include supply chain."
	assert.Equal(t, expected, block)
}

func TestGetContextQueryErrorReturnsEmpty(t *testing.T) {
	store := &mockIndexStore{
		queryFunc: func(ctx context.Context, text string, n int) (*interfaces.QueryResult, error) {
			return nil, errors.New("index unavailable")
		},
	}
	retriever := NewRetriever(store, arbor.NewLogger())

	assert.Equal(t, "", retriever.GetContext(context.Background(), "anything", 3))
}

func TestGetContextInventoryQuerySkipsSearch(t *testing.T) {
	store := &mockIndexStore{
		getFunc: func(ctx context.Context, filter map[string]string) (*interfaces.IndexResult, error) {
			return &interfaces.IndexResult{
				Metadatas: []models.ChunkMetadata{
					{Source: "b.pdf", Page: 2, ProcessedDate: "2023-01-02"},
					{Source: "a.pdf", Page: 9, ProcessedDate: "2023-01-01"},
					{Source: "a.pdf", Page: 3, ProcessedDate: "2023-01-01"},
				},
			}, nil
		},
	}
	retriever := NewRetriever(store, arbor.NewLogger())

	queries := []string{
		"What documents do you have?",
		"Which reports are loaded?",
		"show me the available files",
		"what files can I ask about",
	}
	for _, query := range queries {
		result := retriever.GetContext(context.Background(), query, 5)
		assert.Contains(t, result, "Available documents:")
		assert.Contains(t, result, "Document: a.pdf\nPages: 9\nProcessed: 2023-01-01")
		assert.Contains(t, result, "Document: b.pdf\nPages: 2\nProcessed: 2023-01-02")
	}
	assert.False(t, store.queryCalled, "inventory questions must not hit similarity search")
}

func TestGetContextInventoryEmptyIndex(t *testing.T) {
	retriever := NewRetriever(&mockIndexStore{}, arbor.NewLogger())

	result := retriever.GetContext(context.Background(), "what documents are there", 5)
	assert.Equal(t, "No documents are currently indexed.", result)
}

func TestCorpusSummary(t *testing.T) {
	store := &mockIndexStore{
		getFunc: func(ctx context.Context, filter map[string]string) (*interfaces.IndexResult, error) {
			return &interfaces.IndexResult{
				Metadatas: []models.ChunkMetadata{
					{Source: "a.pdf", Page: 3, ProcessedDate: "2023-01-01"},
					{Source: "a.pdf", Page: 11, ProcessedDate: "2023-01-01"},
					{Source: "", Page: 1},
					{Source: "b.pdf", Page: 1, ProcessedDate: "2023-02-02"},
				},
			}, nil
		},
	}
	retriever := NewRetriever(store, arbor.NewLogger())

	summary, err := retriever.CorpusSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, models.DocumentInfo{TotalPages: 11, ProcessedDate: "2023-01-01"}, summary["a.pdf"])
	assert.Equal(t, models.DocumentInfo{TotalPages: 1, ProcessedDate: "2023-02-02"}, summary["b.pdf"])
}

func TestCorpusSummaryErrorPropagates(t *testing.T) {
	store := &mockIndexStore{
		getFunc: func(ctx context.Context, filter map[string]string) (*interfaces.IndexResult, error) {
			return nil, errors.New("index unavailable")
		},
	}
	retriever := NewRetriever(store, arbor.NewLogger())

	_, err := retriever.CorpusSummary(context.Background())
	assert.Error(t, err)
}
