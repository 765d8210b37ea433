package ingest

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// PageText holds the extracted plain text of a single PDF page.
type PageText struct {
	Page int // 1-based page number
	Text string
}

// ExtractPDF extracts plain text from every page of a PDF file.
// Pages that fail text extraction are skipped rather than failing the whole
// document; scanned-image pages commonly have no text layer at all.
func ExtractPDF(path string) ([]PageText, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat PDF %s: %w", path, err)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF %s: %w", path, err)
	}

	var pages []PageText
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil || text == "" {
			continue
		}

		pages = append(pages, PageText{Page: i, Text: text})
	}

	return pages, nil
}
