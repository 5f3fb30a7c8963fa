package compose

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog/log"

	"github.com/local/pagesift/internal/pdferr"
)

func init() {
	// keep pdfcpu from creating a config dir under the user's home
	api.DisableConfigDir()
}

// Document is a source PDF read fully into memory.
type Document struct {
	Path string
	Data []byte
}

// OutputDocument accumulates copied pages in output order. Each page is held
// as a single-page PDF until Serialize merges them.
type OutputDocument struct {
	Name  string
	pages [][]byte
}

// NewOutputDocument returns an empty output document.
func NewOutputDocument(name string) *OutputDocument {
	return &OutputDocument{Name: name}
}

// PageCount returns the number of pages appended so far.
func (o *OutputDocument) PageCount() int { return len(o.pages) }

// Mark returns a position that Truncate can roll back to.
func (o *OutputDocument) Mark() int { return len(o.pages) }

// Truncate drops every page appended after mark.
func (o *OutputDocument) Truncate(mark int) {
	if mark < 0 {
		mark = 0
	}
	if mark < len(o.pages) {
		o.pages = o.pages[:mark]
	}
}

// Composer copies pages between documents using pdfcpu.
type Composer struct {
	paper string
}

// New returns a Composer. Empty outputs are written with A4 page tree defaults.
func New() *Composer {
	return &Composer{paper: "A4"}
}

func (c *Composer) config() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount parses doc and returns its number of pages.
func (c *Composer) PageCount(doc Document) (int, error) {
	n, err := api.PageCount(bytes.NewReader(doc.Data), c.config())
	if err != nil {
		return 0, pdferr.Parse(doc.Path, err)
	}
	return n, nil
}

// Append copies the pages of doc at indices, in the order given, to the end of
// target. Pages copied before a failing index stay in target.
func (c *Composer) Append(doc Document, indices []int, target *OutputDocument) error {
	total, err := c.PageCount(doc)
	if err != nil {
		return err
	}
	for _, idx := range indices {
		if idx < 0 || idx >= total {
			return &pdferr.IndexOutOfRangeError{Path: doc.Path, Index: idx, PageCount: total}
		}
		var buf bytes.Buffer
		sel := []string{strconv.Itoa(idx + 1)}
		if err := api.Collect(bytes.NewReader(doc.Data), &buf, sel, c.config()); err != nil {
			return pdferr.Parse(doc.Path, fmt.Errorf("copy page %d: %w", idx, err))
		}
		target.pages = append(target.pages, buf.Bytes())
	}
	log.Debug().Str("source", doc.Path).Str("target", target.Name).Ints("pages", indices).Msg("appended pages")
	return nil
}

// Serialize writes target as one PDF to w.
func (c *Composer) Serialize(target *OutputDocument, w io.Writer) error {
	switch len(target.pages) {
	case 0:
		return c.writeEmpty(w)
	case 1:
		_, err := w.Write(target.pages[0])
		return err
	}
	rsc := make([]io.ReadSeeker, len(target.pages))
	for i, p := range target.pages {
		rsc[i] = bytes.NewReader(p)
	}
	if err := api.MergeRaw(rsc, w, false, c.config()); err != nil {
		return fmt.Errorf("merge %s: %w", target.Name, err)
	}
	return nil
}

// Bytes is Serialize into memory.
func (c *Composer) Bytes(target *OutputDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Serialize(target, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Composer) writeEmpty(w io.Writer) error {
	dim, ok := types.PaperSize[c.paper]
	if !ok {
		return fmt.Errorf("unknown paper size %q", c.paper)
	}
	ctx, err := pdfcpu.CreateContextWithXRefTable(c.config(), dim)
	if err != nil {
		return fmt.Errorf("create empty pdf: %w", err)
	}
	return api.WriteContext(ctx, w)
}
