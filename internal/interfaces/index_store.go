package interfaces

import (
	"context"

	"github.com/ternarybob/quaestor/internal/models"
)

// IndexResult holds records returned by a metadata get against the index.
// The three slices are parallel: ids[i] describes documents[i]/metadatas[i].
type IndexResult struct {
	IDs       []string
	Documents []string
	Metadatas []models.ChunkMetadata
}

// QueryResult holds similarity-ranked records. Slices are parallel and
// ordered by the index service's ranking; callers must not re-sort.
type QueryResult struct {
	Documents []string
	Metadatas []models.ChunkMetadata
}

// IndexStore wraps the opaque similarity-search service holding chunk
// text, embeddings, and metadata. Add and Delete are assumed
// all-or-nothing per call; the filter is an equality match on metadata
// fields (in practice, "source").
type IndexStore interface {
	// Get returns all records matching the filter; a nil or empty
	// filter returns the whole collection.
	Get(ctx context.Context, filter map[string]string) (*IndexResult, error)

	// Query returns the top-n records most similar to the query text.
	Query(ctx context.Context, text string, n int) (*QueryResult, error)

	// Add inserts a batch of records. Slices must be the same length.
	Add(ctx context.Context, ids []string, documents []string, metadatas []models.ChunkMetadata) error

	// Delete removes records by id. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string) error
}
