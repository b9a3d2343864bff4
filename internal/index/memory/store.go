package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// record is one stored chunk
type record struct {
	id       string
	document string
	metadata models.ChunkMetadata
}

// Store is an in-memory index store. Similarity is naive token overlap,
// which is enough for tests and for running the service without an
// external index.
type Store struct {
	mu      sync.RWMutex
	records []record
	byID    map[string]int
}

var _ interfaces.IndexStore = (*Store)(nil)

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		byID: make(map[string]int),
	}
}

// Get returns all records matching the filter, in insertion order
func (s *Store) Get(ctx context.Context, filter map[string]string) (*interfaces.IndexResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := &interfaces.IndexResult{}
	for _, rec := range s.records {
		if !matchesFilter(rec.metadata, filter) {
			continue
		}
		result.IDs = append(result.IDs, rec.id)
		result.Documents = append(result.Documents, rec.document)
		result.Metadatas = append(result.Metadatas, rec.metadata)
	}
	return result, nil
}

// Query ranks records by token overlap with the query text
func (s *Store) Query(ctx context.Context, text string, n int) (*interfaces.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queryTokens := tokenize(text)

	type scored struct {
		rec   record
		score float64
		order int
	}

	var candidates []scored
	for i, rec := range s.records {
		score := overlap(queryTokens, tokenize(rec.document))
		if score <= 0 {
			continue
		}
		candidates = append(candidates, scored{rec: rec, score: score, order: i})
	}

	// Stable by insertion order among equal scores
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})

	if n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}

	result := &interfaces.QueryResult{}
	for _, c := range candidates {
		result.Documents = append(result.Documents, c.rec.document)
		result.Metadatas = append(result.Metadatas, c.rec.metadata)
	}
	return result, nil
}

// Add inserts records, replacing any existing record with the same id
func (s *Store) Add(ctx context.Context, ids []string, documents []string, metadatas []models.ChunkMetadata) error {
	if len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("mismatched batch lengths: %d ids, %d documents, %d metadatas",
			len(ids), len(documents), len(metadatas))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range ids {
		rec := record{id: id, document: documents[i], metadata: metadatas[i]}
		if idx, exists := s.byID[id]; exists {
			s.records[idx] = rec
			continue
		}
		s.byID[id] = len(s.records)
		s.records = append(s.records, rec)
	}
	return nil
}

// Delete removes records by id, ignoring unknown ids
func (s *Store) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := s.records[:0]
	for _, rec := range s.records {
		if !drop[rec.id] {
			kept = append(kept, rec)
		}
	}
	s.records = kept

	s.byID = make(map[string]int, len(s.records))
	for i, rec := range s.records {
		s.byID[rec.id] = i
	}
	return nil
}

// Count returns the number of stored records
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func matchesFilter(metadata models.ChunkMetadata, filter map[string]string) bool {
	for key, value := range filter {
		switch key {
		case "source":
			if metadata.Source != value {
				return false
			}
		case "file_hash":
			if metadata.FileHash != value {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		token := strings.Trim(field, ".,;:!?()[]{}\"'")
		if len(token) > 2 {
			tokens[token] = true
		}
	}
	return tokens
}

func overlap(query, doc map[string]bool) float64 {
	if len(query) == 0 {
		return 0
	}
	matches := 0
	for token := range query {
		if doc[token] {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}
