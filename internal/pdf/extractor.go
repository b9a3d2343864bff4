// -----------------------------------------------------------------------
// PDF Extractor Service - Extract page text from PDF documents
// Uses pdfcpu for Go-native PDF processing
// -----------------------------------------------------------------------

package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
)

// Extractor implements the PDFExtractor interface using pdfcpu
type Extractor struct {
	logger  arbor.ILogger
	tempDir string
}

// Compile-time interface assertion
var _ interfaces.PDFExtractor = (*Extractor)(nil)

// NewExtractor creates a new PDF extractor service
func NewExtractor(logger arbor.ILogger) *Extractor {
	// Temp directory for pdfcpu content extraction
	tempDir := filepath.Join(os.TempDir(), "quaestor-pdf")
	os.MkdirAll(tempDir, 0755)

	return &Extractor{
		logger:  logger,
		tempDir: tempDir,
	}
}

// ExtractPages extracts text content by page from a PDF on disk.
// Pages whose content cannot be read are logged and skipped; the
// returned document still reports the full page count.
func (e *Extractor) ExtractPages(ctx context.Context, path string) (*interfaces.PDFDocument, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(e.tempDir, fmt.Sprintf("pages_%d_%s", os.Getpid(), sanitizeName(filepath.Base(path))))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create extraction directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract PDF content: %w", err)
	}

	// Read extracted per-page content files
	files, _ := os.ReadDir(outDir)
	pageTexts := make(map[int]string)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			e.logger.Warn().
				Err(err).
				Str("file", file.Name()).
				Str("source", filepath.Base(path)).
				Msg("Failed to read extracted page content, skipping page")
			continue
		}

		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err != nil {
			if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err != nil {
				continue
			}
		}
		pageTexts[pageNum] = string(content)
	}

	pages := make([]interfaces.PDFPageContent, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text, ok := pageTexts[pageNum]
		if !ok {
			e.logger.Warn().
				Int("page", pageNum).
				Str("source", filepath.Base(path)).
				Msg("No text extracted for page, skipping")
			continue
		}
		pages = append(pages, interfaces.PDFPageContent{
			PageNumber: pageNum,
			Text:       text,
		})
	}

	return &interfaces.PDFDocument{
		Path:      path,
		PageCount: pageCount,
		Pages:     pages,
	}, nil
}

// ExtractText extracts all text content from a PDF, concatenated in page order.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	doc, err := e.ExtractPages(ctx, path)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for i, page := range doc.Pages {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(page.Text)
	}

	return builder.String(), nil
}

// sanitizeName strips path-hostile characters from a filename for use
// in temp directory names.
func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")
	return replacer.Replace(name)
}
