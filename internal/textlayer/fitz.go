package textlayer

import (
	"strings"

	fitz "github.com/gen2brain/go-fitz"
)

// FitzOpener extracts text with go-fitz (MuPDF). A run is one non-blank line
// of the page text.
type FitzOpener struct{}

func (FitzOpener) Name() string { return BackendFitz }

func (FitzOpener) Open(data []byte) (Doc, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return fitzDoc{doc}, nil
}

type fitzDoc struct{ *fitz.Document }

func (d fitzDoc) Runs(i int) ([]string, error) {
	text, err := d.Document.Text(i)
	if err != nil {
		return nil, err
	}
	return splitLines(text), nil
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	runs := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		runs = append(runs, line)
	}
	return runs
}
