// Package pdf extracts plain text from uploaded PDF bytes.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/docchat/internal/core/domain"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract decodes the byte stream into its page sequence and concatenates
// the text content: fragments within a page joined by a single space, pages
// joined by a newline. No layout reconstruction is attempted. Any parse or
// per-page failure yields domain.ErrExtraction with no partial result.
func (e *Extractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	// The pdf package panics on some malformed content streams; a broken
	// document must surface as ErrExtraction, not take the process down.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.WrapError(domain.ErrExtraction, "extract pdf", fmt.Errorf("malformed document: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "parse pdf", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for num := 1; num <= reader.NumPage(); num++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", domain.WrapError(domain.ErrExtraction, fmt.Sprintf("extract page %d", num), err)
		}
		pages = append(pages, collapseRows(rows))
	}

	return strings.Join(pages, "\n"), nil
}

// collapseRows flattens one page's text rows into a single line, fragments
// separated by one space, in the reading order the decoder reports.
func collapseRows(rows pdf.Rows) string {
	fragments := make([]string, 0, len(rows))
	for _, row := range rows {
		for _, fragment := range row.Content {
			if fragment.S == "" {
				continue
			}
			fragments = append(fragments, fragment.S)
		}
	}
	return strings.Join(fragments, " ")
}
