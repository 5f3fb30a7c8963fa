// Package pdffixture builds small text PDFs for tests.
package pdffixture

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// Build returns a PDF with one page per element of pages, each page holding
// the given lines of Helvetica text. At least one page is required.
func Build(pages ...[]string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetFont("Helvetica", "", 12)
	for _, lines := range pages {
		pdf.AddPage()
		for _, line := range lines {
			pdf.Cell(0, 10, line)
			pdf.Ln(10)
		}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write builds the PDF and stores it as dir/name.
func Write(dir, name string, pages ...[]string) (string, error) {
	data, err := Build(pages...)
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	return p, nil
}
