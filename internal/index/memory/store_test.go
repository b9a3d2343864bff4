package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/quaestor/internal/models"
)

func seedStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	err := store.Add(context.Background(),
		[]string{"a.pdf-chunk-0", "a.pdf-chunk-1", "b.pdf-chunk-0"},
		[]string{
			"Revenue increased due to strong iPhone demand.",
			"Risk factors include supply chain concentration.",
			"Cloud revenue grew across all segments.",
		},
		[]models.ChunkMetadata{
			{Source: "a.pdf", Chunk: 0, Page: 1, FileHash: "h1"},
			{Source: "a.pdf", Chunk: 1, Page: 2, FileHash: "h1"},
			{Source: "b.pdf", Chunk: 0, Page: 1, FileHash: "h2"},
		})
	require.NoError(t, err)
	return store
}

func TestStoreGetFilters(t *testing.T) {
	store := seedStore(t)

	all, err := store.Get(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all.IDs, 3)

	bySource, err := store.Get(context.Background(), map[string]string{"source": "a.pdf"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf-chunk-0", "a.pdf-chunk-1"}, bySource.IDs)

	byHash, err := store.Get(context.Background(), map[string]string{"file_hash": "h2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.pdf-chunk-0"}, byHash.IDs)

	unknown, err := store.Get(context.Background(), map[string]string{"page": "1"})
	require.NoError(t, err)
	assert.Empty(t, unknown.IDs)
}

func TestStoreQueryRanksByOverlap(t *testing.T) {
	store := seedStore(t)

	result, err := store.Query(context.Background(), "supply chain risk factors", 2)
	require.NoError(t, err)
	require.NotEmpty(t, result.Documents)
	assert.Contains(t, result.Documents[0], "supply chain")
	assert.LessOrEqual(t, len(result.Documents), 2)
}

func TestStoreQueryNoMatch(t *testing.T) {
	store := seedStore(t)

	result, err := store.Query(context.Background(), "zzz qqq xxx", 5)
	require.NoError(t, err)
	assert.Empty(t, result.Documents)
}

func TestStoreAddUpsertsByID(t *testing.T) {
	store := seedStore(t)

	err := store.Add(context.Background(),
		[]string{"a.pdf-chunk-0"},
		[]string{"Replacement text."},
		[]models.ChunkMetadata{{Source: "a.pdf", Chunk: 0, Page: 1, FileHash: "h3"}})
	require.NoError(t, err)

	assert.Equal(t, 3, store.Count())

	result, err := store.Get(context.Background(), map[string]string{"file_hash": "h3"})
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "Replacement text.", result.Documents[0])
}

func TestStoreAddLengthMismatch(t *testing.T) {
	store := NewStore()
	err := store.Add(context.Background(), []string{"id-0"}, nil, nil)
	assert.Error(t, err)
}

func TestStoreDelete(t *testing.T) {
	store := seedStore(t)

	err := store.Delete(context.Background(), []string{"a.pdf-chunk-0", "a.pdf-chunk-1", "never-existed"})
	require.NoError(t, err)

	assert.Equal(t, 1, store.Count())
	remaining, err := store.Get(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.pdf-chunk-0"}, remaining.IDs)

	// Ids can be reinserted after deletion
	err = store.Add(context.Background(),
		[]string{"a.pdf-chunk-0"},
		[]string{"Fresh chunk."},
		[]models.ChunkMetadata{{Source: "a.pdf", FileHash: "h4"}})
	require.NoError(t, err)
	assert.Equal(t, 2, store.Count())
}
