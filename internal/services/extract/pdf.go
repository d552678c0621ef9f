package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

type pdfText struct {
	Text          string
	Pages         int
	PagesWithText int
}

// readPDF concatenates the text of every page that has any, each followed by
// a newline. The parser panics on some malformed inputs, so panics are turned
// into extraction errors.
func readPDF(data []byte) (doc pdfText, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = pdfText{}
			err = fmt.Errorf("%w: malformed pdf: %v", ErrExtraction, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return pdfText{}, fmt.Errorf("%w: open pdf: %v", ErrExtraction, err)
	}

	numPages := r.NumPage()
	text, withText := joinPages(numPages, func(i int) (string, error) {
		page := r.Page(i)
		if page.V.IsNull() {
			return "", nil
		}
		return page.GetPlainText(nil)
	})

	return pdfText{Text: text, Pages: numPages, PagesWithText: withText}, nil
}

// joinPages walks pages 1..n in order. Pages that yield no text, or whose text
// cannot be read, are skipped without a placeholder.
func joinPages(n int, pageText func(i int) (string, error)) (string, int) {
	var sb strings.Builder
	withText := 0

	for i := 1; i <= n; i++ {
		text, err := pageText(i)
		if err != nil {
			log.Debug().Err(err).Int("page", i).Msg("Skipping unreadable PDF page")
			continue
		}
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		withText++
	}

	return sb.String(), withText
}
