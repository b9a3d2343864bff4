package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"golang.org/x/sync/singleflight"
)

// Controller reconciles the set of source documents on disk against
// what is already indexed, driving hashing, chunking, and the index
// store. Per-file errors are logged and skipped so one bad document
// never blocks the rest of the corpus; only a missing watched directory
// fails a pass outright.
type Controller struct {
	config    *common.IngestConfig
	extractor interfaces.PDFExtractor
	chunker   *Chunker
	store     interfaces.IndexStore
	logger    arbor.ILogger
	group     singleflight.Group
}

// Compile-time assertion
var _ interfaces.IngestionService = (*Controller)(nil)

// NewController creates a new ingestion controller
func NewController(
	config *common.IngestConfig,
	extractor interfaces.PDFExtractor,
	store interfaces.IndexStore,
	logger arbor.ILogger,
) *Controller {
	return &Controller{
		config:    config,
		extractor: extractor,
		chunker:   NewChunker(config.ChunkSize, logger),
		store:     store,
		logger:    logger,
	}
}

// Reconcile runs one reconciliation pass. Concurrent callers coalesce
// onto a single in-flight pass, so the diff-and-mutate sequence never
// races against itself.
func (c *Controller) Reconcile(ctx context.Context) error {
	_, err, _ := c.group.Do("reconcile", func() (interface{}, error) {
		return nil, c.reconcile(ctx)
	})
	return err
}

func (c *Controller) reconcile(ctx context.Context) error {
	if _, err := os.Stat(c.config.WatchDir); err != nil {
		return fmt.Errorf("watched directory not found: %s: %w", c.config.WatchDir, err)
	}

	currentFiles, err := c.scanWatchDir()
	if err != nil {
		return err
	}

	indexedFiles := c.indexedHashes(ctx)

	var toProcess []string
	for filename, hash := range currentFiles {
		indexedHash, indexed := indexedFiles[filename]
		switch {
		case !indexed:
			c.logger.Info().Str("source", filename).Msg("New file found")
			toProcess = append(toProcess, filename)
		case indexedHash != hash:
			c.logger.Info().Str("source", filename).Msg("Modified file found")
			toProcess = append(toProcess, filename)
		}
	}

	for filename := range indexedFiles {
		if _, exists := currentFiles[filename]; !exists {
			c.logger.Info().Str("source", filename).Msg("Removing deleted file from index")
			c.removeDocument(ctx, filename)
		}
	}

	if len(toProcess) == 0 {
		c.logger.Debug().Msg("No new or modified files to process")
		return nil
	}

	c.logger.Info().Int("count", len(toProcess)).Msg("Processing files")

	for _, filename := range toProcess {
		if _, indexed := indexedFiles[filename]; indexed {
			// Modified file: drop the old chunk set before re-indexing
			c.removeDocument(ctx, filename)
		}
		c.ingestDocument(ctx, filename, currentFiles[filename])
	}

	return nil
}

// scanWatchDir enumerates *.pdf files in the watched directory and
// fingerprints each one. Files that cannot be hashed are logged and
// skipped.
func (c *Controller) scanWatchDir() (map[string]string, error) {
	entries, err := os.ReadDir(c.config.WatchDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read watched directory: %w", err)
	}

	files := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}

		hash, err := HashFile(filepath.Join(c.config.WatchDir, entry.Name()))
		if err != nil {
			c.logger.Warn().Err(err).Str("source", entry.Name()).Msg("Failed to hash file, skipping")
			continue
		}
		files[entry.Name()] = hash
	}

	return files, nil
}

// indexedHashes reduces all indexed chunk metadata to one hash per
// source filename. Any chunk's metadata suffices since all of a
// document's chunks share its hash.
func (c *Controller) indexedHashes(ctx context.Context) map[string]string {
	result, err := c.store.Get(ctx, nil)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to fetch indexed documents, treating index as empty")
		return map[string]string{}
	}

	hashes := make(map[string]string)
	for _, metadata := range result.Metadatas {
		if metadata.Source == "" {
			continue
		}
		hashes[metadata.Source] = metadata.FileHash
	}
	return hashes
}

// removeDocument deletes all chunks whose source matches filename
func (c *Controller) removeDocument(ctx context.Context, filename string) {
	result, err := c.store.Get(ctx, map[string]string{"source": filename})
	if err != nil {
		c.logger.Error().Err(err).Str("source", filename).Msg("Failed to look up chunks for removal")
		return
	}
	if len(result.IDs) == 0 {
		return
	}

	if err := c.store.Delete(ctx, result.IDs); err != nil {
		c.logger.Error().Err(err).Str("source", filename).Msg("Failed to delete chunks")
		return
	}

	c.logger.Info().
		Str("source", filename).
		Int("chunks", len(result.IDs)).
		Msg("Removed document from index")
}

// ingestDocument chunks one document and inserts the chunks in bounded
// batches. A failed batch is logged and skipped; ingestion continues
// with the next batch.
func (c *Controller) ingestDocument(ctx context.Context, filename, hash string) {
	path := filepath.Join(c.config.WatchDir, filename)

	doc, err := c.extractor.ExtractPages(ctx, path)
	if err != nil {
		c.logger.Error().Err(err).Str("source", filename).Msg("Failed to extract document, skipping")
		return
	}

	c.logger.Info().
		Str("source", filename).
		Int("pages", doc.PageCount).
		Msg("Processing document")

	var (
		ids       []string
		documents []string
		metadatas []models.ChunkMetadata
		total     int
	)

	flush := func() {
		if len(ids) == 0 {
			return
		}
		if err := c.store.Add(ctx, ids, documents, metadatas); err != nil {
			c.logger.Error().
				Err(err).
				Str("source", filename).
				Int("batch_size", len(ids)).
				Msg("Failed to add batch to index, skipping batch")
		} else {
			total += len(ids)
			c.logger.Debug().
				Str("source", filename).
				Int("batch_size", len(ids)).
				Msg("Added chunk batch to index")
		}
		ids = ids[:0]
		documents = documents[:0]
		metadatas = metadatas[:0]
	}

	for chunk := range c.chunker.Chunk(filename, hash, doc) {
		ids = append(ids, chunk.ID)
		documents = append(documents, chunk.Text)
		metadatas = append(metadatas, chunk.Metadata)

		if len(ids) >= c.config.BatchSize {
			flush()
			// Throttle load on the index service between batches
			if c.config.BatchPause > 0 {
				time.Sleep(c.config.BatchPause)
			}
		}
	}
	flush()

	c.logger.Info().
		Str("source", filename).
		Int("chunks", total).
		Msg("Document ingested")
}
