package textlayer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFOpener extracts text with the pure Go ledongthuc/pdf reader. A run is one
// text row of the page, rows ordered top to bottom.
type PDFOpener struct{}

func (PDFOpener) Name() string { return BackendPDF }

func (PDFOpener) Open(data []byte) (d Doc, err error) {
	defer func() {
		if r := recover(); r != nil {
			d, err = nil, fmt.Errorf("pdf reader: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &readerDoc{r: r}, nil
}

type readerDoc struct{ r *pdf.Reader }

func (d *readerDoc) NumPage() int { return d.r.NumPage() }

func (d *readerDoc) Close() error { return nil }

func (d *readerDoc) Runs(i int) (runs []string, err error) {
	// the reader panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			runs, err = nil, fmt.Errorf("pdf reader page %d: %v", i, r)
		}
	}()
	page := d.r.Page(i + 1)
	if page.V.IsNull() {
		return nil, nil
	}
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		var b strings.Builder
		for _, t := range row.Content {
			b.WriteString(t.S)
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			runs = append(runs, s)
		}
	}
	return runs, nil
}
