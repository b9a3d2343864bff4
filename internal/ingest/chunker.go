package ingest

import (
	"fmt"
	"iter"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// Chunker turns one document's extracted page text into an ordered
// sequence of bounded-size chunks. Page text accumulates in a buffer;
// whenever the buffer reaches the configured size the text is cut at the
// last sentence boundary at or before the threshold (or exactly at the
// threshold when no boundary exists) and emitted as one chunk.
type Chunker struct {
	chunkSize int
	logger    arbor.ILogger
}

// NewChunker creates a new chunker with the given character threshold
func NewChunker(chunkSize int, logger arbor.ILogger) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &Chunker{
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// Chunk yields the document's chunks lazily, in page order then
// intra-page order. The sequence is finite and single-use; callers that
// need the chunks twice re-extract the text, which is cheap.
//
// Chunks are trimmed of surrounding whitespace; a chunk that is empty
// after trimming is dropped without consuming a sequence number, so
// sequence numbers are dense from 0 per document.
func (c *Chunker) Chunk(source, fileHash string, doc *interfaces.PDFDocument) iter.Seq[models.Chunk] {
	processedDate := time.Now().Format(time.RFC3339)

	return func(yield func(models.Chunk) bool) {
		var buffer string
		sequence := 0
		lastPage := 0

		emit := func(text string, page int) bool {
			text = strings.TrimSpace(text)
			if text == "" {
				return true
			}
			chunk := models.Chunk{
				ID:   fmt.Sprintf("%s-chunk-%d", source, sequence),
				Text: text,
				Metadata: models.ChunkMetadata{
					Source:        source,
					Chunk:         sequence,
					Page:          page,
					ProcessedDate: processedDate,
					FileHash:      fileHash,
				},
			}
			sequence++
			return yield(chunk)
		}

		for _, page := range doc.Pages {
			buffer += page.Text + "\n"
			lastPage = page.PageNumber

			for len(buffer) >= c.chunkSize {
				cut := c.cutPoint(buffer)
				if !emit(buffer[:cut], page.PageNumber) {
					return
				}
				buffer = buffer[cut:]
			}
		}

		// Flush whatever remains after the final page
		if strings.TrimSpace(buffer) != "" {
			emit(buffer, lastPage)
		}
	}
}

// cutPoint returns the byte offset to cut the buffer at: just past the
// last '.' at or before the threshold, or at the threshold itself when
// no sentence boundary exists (backed off to a rune boundary so a
// multi-byte character is never split).
func (c *Chunker) cutPoint(buffer string) int {
	window := buffer[:c.chunkSize]
	if idx := strings.LastIndexByte(window, '.'); idx >= 0 {
		return idx + 1
	}

	cut := c.chunkSize
	for cut > 0 && cut < len(buffer) && !utf8.RuneStart(buffer[cut]) {
		cut--
	}
	if cut == 0 {
		cut = c.chunkSize
	}
	return cut
}
