package pipeline

import (
	"context"

	"github.com/local/pagesift/internal/classify"
	"github.com/local/pagesift/internal/compose"
)

// DefaultSelectOutput is the name of the merged document pagepick writes.
const DefaultSelectOutput = "final"

// SelectConfig configures the fixed page pipeline.
type SelectConfig struct {
	InputDir    string
	OutputDir   string
	PageIndices []int
	// OutputName defaults to DefaultSelectOutput.
	OutputName string
	BestEffort bool
}

// Select copies the same pages of every input PDF into one output.
type Select struct {
	r *runner
}

func NewSelect(cfg SelectConfig, opts Options) *Select {
	name := cfg.OutputName
	if name == "" {
		name = DefaultSelectOutput
	}
	sel := classify.NewSelector(cfg.PageIndices)
	r := newRunner("pagepick", cfg.InputDir, cfg.OutputDir, []string{name}, cfg.BestEffort, opts)
	r.pick = func(_ context.Context, doc compose.Document) ([]classify.CategoryMatch, error) {
		return []classify.CategoryMatch{{Name: name, Pages: sel.Select(doc)}}, nil
	}
	return &Select{r: r}
}

// Run processes the input directory and writes the merged output.
func (p *Select) Run(ctx context.Context) (*Result, error) { return p.r.run(ctx) }
