package interfaces

import "context"

// PDFPageContent holds the extracted text of one PDF page.
type PDFPageContent struct {
	// PageNumber is 1-indexed
	PageNumber int
	Text       string
}

// PDFDocument is the result of extracting a PDF from disk.
// Pages contains only the pages whose extraction succeeded; PageCount
// is the document's full page count regardless of extraction failures.
type PDFDocument struct {
	Path      string
	PageCount int
	Pages     []PDFPageContent
}

// PDFExtractor extracts page text from PDF files. A page that fails to
// extract is logged and skipped; the extractor only errors when the
// document itself cannot be read.
type PDFExtractor interface {
	ExtractPages(ctx context.Context, path string) (*PDFDocument, error)
	ExtractText(ctx context.Context, path string) (string, error)
}
