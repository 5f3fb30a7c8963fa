package pipeline

import (
	"context"

	"github.com/local/pagesift/internal/classify"
	"github.com/local/pagesift/internal/compose"
)

// ClassifyConfig configures the marker driven pipeline. Each category is
// written to <OutputDir>/<name>.pdf.
type ClassifyConfig struct {
	InputDir   string
	OutputDir  string
	Categories []classify.Category
	// BestEffort skips files that fail instead of aborting the run.
	BestEffort bool
}

// Classify routes pages of every input PDF to category outputs by marker.
type Classify struct {
	r *runner
}

// NewClassify wires the pipeline. Categories default to
// classify.DefaultCategories.
func NewClassify(cfg ClassifyConfig, c *classify.Classifier, opts Options) *Classify {
	cats := cfg.Categories
	if len(cats) == 0 {
		cats = classify.DefaultCategories()
	}
	names := make([]string, len(cats))
	for i, cat := range cats {
		names[i] = cat.Name
	}
	r := newRunner("billsplit", cfg.InputDir, cfg.OutputDir, names, cfg.BestEffort, opts)
	r.reportPages = true
	r.pick = func(ctx context.Context, doc compose.Document) ([]classify.CategoryMatch, error) {
		return c.Categorize(ctx, doc, cats)
	}
	return &Classify{r: r}
}

// Run processes the input directory and writes every category output.
func (p *Classify) Run(ctx context.Context) (*Result, error) { return p.r.run(ctx) }
