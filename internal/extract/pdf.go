package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// structuredParser reads PDF text layers page by page. Resume PDFs are
// frequently malformed, and the underlying reader panics on some of them,
// so both document open and per-page reads are recover-guarded.
type structuredParser struct{}

func (structuredParser) PageTexts(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf reader panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		if text, ok := pageText(reader.Page(i)); ok {
			pages = append(pages, text)
		}
	}
	return pages, nil
}

// pageText is best-effort: a broken page contributes nothing rather than
// failing the whole document.
func pageText(page pdf.Page) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			text, ok = "", false
		}
	}()

	if page.V.IsNull() {
		return "", false
	}
	raw, err := page.GetPlainText(nil)
	if err != nil {
		return "", false
	}
	trimmed := strings.TrimSpace(raw)
	return trimmed, trimmed != ""
}
