package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/index/memory"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// fakeExtractor serves page text from an in-memory map keyed by filename
type fakeExtractor struct {
	pages map[string][]interfaces.PDFPageContent
}

func (f *fakeExtractor) ExtractPages(ctx context.Context, path string) (*interfaces.PDFDocument, error) {
	pages := f.pages[filepath.Base(path)]
	return &interfaces.PDFDocument{
		Path:      path,
		PageCount: len(pages),
		Pages:     pages,
	}, nil
}

func (f *fakeExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	var text string
	for _, page := range f.pages[filepath.Base(path)] {
		text += page.Text + "\n\n"
	}
	return text, nil
}

// countingStore wraps the memory store to count mutating calls
type countingStore struct {
	*memory.Store
	adds    int
	deletes int
}

func (c *countingStore) Add(ctx context.Context, ids []string, documents []string, metadatas []models.ChunkMetadata) error {
	c.adds++
	return c.Store.Add(ctx, ids, documents, metadatas)
}

func (c *countingStore) Delete(ctx context.Context, ids []string) error {
	c.deletes++
	return c.Store.Delete(ctx, ids)
}

func newTestController(t *testing.T, watchDir string, extractor *fakeExtractor) (*Controller, *countingStore) {
	t.Helper()
	store := &countingStore{Store: memory.NewStore()}
	config := &common.IngestConfig{
		WatchDir:  watchDir,
		ChunkSize: 50,
		BatchSize: 2,
	}
	return NewController(config, extractor, store, arbor.NewLogger()), store
}

func writeWatchedFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func sourceChunks(t *testing.T, store interfaces.IndexStore, source string) *interfaces.IndexResult {
	t.Helper()
	result, err := store.Get(context.Background(), map[string]string{"source": source})
	require.NoError(t, err)
	return result
}

func TestReconcileIndexesNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeWatchedFile(t, dir, "alpha.pdf", "alpha v1")
	writeWatchedFile(t, dir, "notes.txt", "not a pdf")

	extractor := &fakeExtractor{pages: map[string][]interfaces.PDFPageContent{
		"alpha.pdf": {{PageNumber: 1, Text: "Revenue grew strongly. Margins held steady. Cash is up."}},
	}}
	controller, store := newTestController(t, dir, extractor)

	require.NoError(t, controller.Reconcile(context.Background()))

	result := sourceChunks(t, store, "alpha.pdf")
	assert.NotEmpty(t, result.IDs)

	// Non-pdf files are ignored
	assert.Empty(t, sourceChunks(t, store, "notes.txt").IDs)
}

func TestReconcileIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeWatchedFile(t, dir, "alpha.pdf", "alpha v1")

	extractor := &fakeExtractor{pages: map[string][]interfaces.PDFPageContent{
		"alpha.pdf": {{PageNumber: 1, Text: "Revenue grew strongly. Margins held steady."}},
	}}
	controller, store := newTestController(t, dir, extractor)

	require.NoError(t, controller.Reconcile(context.Background()))
	addsAfterFirst := store.adds
	deletesAfterFirst := store.deletes

	// No filesystem change: the second pass must not touch the index
	require.NoError(t, controller.Reconcile(context.Background()))
	assert.Equal(t, addsAfterFirst, store.adds)
	assert.Equal(t, deletesAfterFirst, store.deletes)
}

func TestReconcileReplacesModifiedFile(t *testing.T) {
	dir := t.TempDir()
	writeWatchedFile(t, dir, "alpha.pdf", "alpha v1")

	extractor := &fakeExtractor{pages: map[string][]interfaces.PDFPageContent{
		"alpha.pdf": {{PageNumber: 1, Text: "Original filing text. More original text."}},
	}}
	controller, store := newTestController(t, dir, extractor)
	require.NoError(t, controller.Reconcile(context.Background()))

	oldResult := sourceChunks(t, store, "alpha.pdf")
	require.NotEmpty(t, oldResult.Metadatas)
	oldHash := oldResult.Metadatas[0].FileHash

	// Replace content on disk; the extracted text changes too
	writeWatchedFile(t, dir, "alpha.pdf", "alpha v2 with different bytes")
	extractor.pages["alpha.pdf"] = []interfaces.PDFPageContent{
		{PageNumber: 1, Text: "Amended filing text. Entirely rewritten."},
	}
	require.NoError(t, controller.Reconcile(context.Background()))

	newResult := sourceChunks(t, store, "alpha.pdf")
	require.NotEmpty(t, newResult.Metadatas)
	for _, metadata := range newResult.Metadatas {
		assert.NotEqual(t, oldHash, metadata.FileHash, "no chunk may carry the stale hash")
	}
}

func TestReconcileRemovesDeletedFile(t *testing.T) {
	dir := t.TempDir()
	writeWatchedFile(t, dir, "alpha.pdf", "alpha v1")

	extractor := &fakeExtractor{pages: map[string][]interfaces.PDFPageContent{
		"alpha.pdf": {{PageNumber: 1, Text: "Filing text to be removed later."}},
	}}
	controller, store := newTestController(t, dir, extractor)
	require.NoError(t, controller.Reconcile(context.Background()))
	require.NotEmpty(t, sourceChunks(t, store, "alpha.pdf").IDs)

	require.NoError(t, os.Remove(filepath.Join(dir, "alpha.pdf")))
	require.NoError(t, controller.Reconcile(context.Background()))

	assert.Empty(t, sourceChunks(t, store, "alpha.pdf").IDs)
}

func TestReconcileMissingWatchDir(t *testing.T) {
	extractor := &fakeExtractor{pages: map[string][]interfaces.PDFPageContent{}}
	controller, _ := newTestController(t, filepath.Join(t.TempDir(), "does-not-exist"), extractor)

	assert.Error(t, controller.Reconcile(context.Background()))
}
