// Package extract converts uploaded resume files into plain text.
//
// PDFs get a two-tier treatment: a structured per-page parse first, then a
// byte-level content-stream heuristic for malformed or image-only documents.
package extract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Shivamtawar/buildxhire/internal/domain"
)

// heuristicMinLength is the acceptance threshold for the fallback scan.
// The BT/ET scan is a best-effort approximation of content-stream parsing
// and can match binary noise; anything this short is treated as noise.
const heuristicMinLength = 20

var (
	textShowBlocks = regexp.MustCompile(`(?s)BT.*?ET`)
	nonWordRunes   = regexp.MustCompile(`[^\w\s]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// PDFParser pulls per-page text layers out of a PDF document. It returns one
// entry per page, skipping pages whose text layer cannot be read, and an
// error only when the document itself cannot be opened.
type PDFParser interface {
	PageTexts(data []byte) ([]string, error)
}

// Extractor converts uploaded files (PDF or plain text) into text.
type Extractor struct {
	pdf PDFParser
}

// New returns an Extractor backed by the default structured PDF parser.
func New() *Extractor {
	return &Extractor{pdf: structuredParser{}}
}

// NewWithParser substitutes the structured PDF parser.
func NewWithParser(parser PDFParser) *Extractor {
	return &Extractor{pdf: parser}
}

// Extract dispatches on the file extension and returns the extracted text.
// Unsupported types fail before any bytes are inspected.
func (e *Extractor) Extract(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return e.extractPlainText(data)
	case ".pdf":
		return e.extractPDF(data)
	default:
		return "", fmt.Errorf("%w: %q (upload a PDF or TXT file)", domain.ErrUnsupportedFileType, filename)
	}
}

func (e *Extractor) extractPlainText(data []byte) (string, error) {
	text := strings.TrimSpace(stripBOM(string(data)))
	if text == "" {
		return "", domain.ErrEmptyContent
	}
	return text, nil
}

// extractPDF attempts the structured text layer first. Individual page
// failures are absorbed by the parser; only an entirely empty result falls
// through to the byte-level heuristic.
func (e *Extractor) extractPDF(data []byte) (string, error) {
	pages, err := e.pdf.PageTexts(data)
	if err == nil {
		joined := strings.TrimSpace(strings.Join(pages, " "))
		joined = whitespaceRuns.ReplaceAllString(joined, " ")
		if joined != "" {
			return joined, nil
		}
	}
	return heuristicText(data)
}

// heuristicText scans raw bytes for BT...ET content-stream text-show blocks.
// Accepted only when the cleaned result is plausibly prose.
func heuristicText(data []byte) (string, error) {
	text := stripBOM(string(data))

	matches := textShowBlocks.FindAllString(text, -1)
	if len(matches) == 0 {
		return "", domain.ErrUnextractableContent
	}

	cleaned := strings.Join(matches, " ")
	cleaned = nonWordRunes.ReplaceAllString(cleaned, " ")
	cleaned = whitespaceRuns.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if len(cleaned) <= heuristicMinLength {
		return "", domain.ErrUnextractableContent
	}
	return cleaned, nil
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
