package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

func collectChunks(t *testing.T, chunker *Chunker, source, hash string, doc *interfaces.PDFDocument) []models.Chunk {
	t.Helper()
	var chunks []models.Chunk
	for chunk := range chunker.Chunk(source, hash, doc) {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func singlePageDoc(text string) *interfaces.PDFDocument {
	return &interfaces.PDFDocument{
		PageCount: 1,
		Pages: []interfaces.PDFPageContent{
			{PageNumber: 1, Text: text},
		},
	}
}

func TestChunkerSentenceBoundaries(t *testing.T) {
	chunker := NewChunker(4, arbor.NewLogger())

	chunks := collectChunks(t, chunker, "doc.pdf", "h1", singlePageDoc("A. B. C."))

	// Threshold 4 forces a cut inside "A. B" and again inside " C."
	// so each boundary falls immediately after a period.
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.True(t, strings.HasSuffix(chunk.Text, "."),
			"chunk %q should end at a sentence boundary", chunk.Text)
		assert.NotEmpty(t, strings.TrimSpace(chunk.Text))
	}

	// Concatenating chunk texts reconstructs the content
	var rebuilt strings.Builder
	for _, chunk := range chunks {
		rebuilt.WriteString(chunk.Text)
		rebuilt.WriteString(" ")
	}
	assert.Equal(t, "A. B. C.", strings.TrimSpace(rebuilt.String()))
}

func TestChunkerSequenceNumbersDense(t *testing.T) {
	chunker := NewChunker(50, arbor.NewLogger())

	// Pages 2 and 4 missing, as if extraction failed for them
	doc := &interfaces.PDFDocument{
		PageCount: 5,
		Pages: []interfaces.PDFPageContent{
			{PageNumber: 1, Text: strings.Repeat("First page sentence. ", 10)},
			{PageNumber: 3, Text: strings.Repeat("Third page sentence. ", 10)},
			{PageNumber: 5, Text: strings.Repeat("Fifth page sentence. ", 10)},
		},
	}

	chunks := collectChunks(t, chunker, "report.pdf", "h1", doc)
	require.NotEmpty(t, chunks)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Metadata.Chunk, "sequence numbers must be dense from 0")
		assert.Equal(t, fmt.Sprintf("report.pdf-chunk-%d", i), chunk.ID)
		assert.Equal(t, "report.pdf", chunk.Metadata.Source)
		assert.Equal(t, "h1", chunk.Metadata.FileHash)
	}
}

func TestChunkerNoSentenceBoundary(t *testing.T) {
	chunker := NewChunker(10, arbor.NewLogger())

	// No periods anywhere; cuts fall exactly at the threshold
	chunks := collectChunks(t, chunker, "doc.pdf", "h1", singlePageDoc(strings.Repeat("abcde", 6)))

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Text), 10)
	}
}

func TestChunkerEmptyDocument(t *testing.T) {
	chunker := NewChunker(1000, arbor.NewLogger())

	chunks := collectChunks(t, chunker, "doc.pdf", "h1", singlePageDoc("   \n  "))
	assert.Empty(t, chunks)
}

func TestChunkerFinalFlushUsesLastPage(t *testing.T) {
	chunker := NewChunker(1000, arbor.NewLogger())

	doc := &interfaces.PDFDocument{
		PageCount: 3,
		Pages: []interfaces.PDFPageContent{
			{PageNumber: 1, Text: "Opening remarks."},
			{PageNumber: 3, Text: "Closing remarks."},
		},
	}

	chunks := collectChunks(t, chunker, "doc.pdf", "h1", doc)
	require.Len(t, chunks, 1)
	assert.Equal(t, 3, chunks[0].Metadata.Page)
}
