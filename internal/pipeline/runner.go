package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/pagesift/internal/classify"
	"github.com/local/pagesift/internal/compose"
	"github.com/local/pagesift/internal/metrics"
	"github.com/local/pagesift/internal/output"
	"github.com/local/pagesift/internal/scan"
)

// Publisher ships a written output file somewhere else and returns its URL.
type Publisher interface {
	Publish(ctx context.Context, localPath string) (string, error)
}

// Options carries the collaborators shared by both pipelines. Zero values are
// usable: no console output, no metrics, no publishing.
type Options struct {
	Out       io.Writer
	Metrics   *metrics.Recorder
	Publisher Publisher
	Composer  *compose.Composer
}

// Output describes one written output document.
type Output struct {
	Name  string
	Path  string
	URL   string
	Pages int
}

// Result summarises a run.
type Result struct {
	Files   int
	Skipped []string
	Outputs []Output
}

// pickFunc decides which pages of doc go to which output, in output order.
type pickFunc func(ctx context.Context, doc compose.Document) ([]classify.CategoryMatch, error)

type runner struct {
	name        string
	inputDir    string
	outputNames []string
	bestEffort  bool
	reportPages bool
	pick        pickFunc

	out       io.Writer
	metrics   *metrics.Recorder
	publisher Publisher
	composer  *compose.Composer
	writer    *output.Writer
}

func newRunner(name, inputDir, outputDir string, outputNames []string, bestEffort bool, opts Options) *runner {
	c := opts.Composer
	if c == nil {
		c = compose.New()
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	return &runner{
		name:        name,
		inputDir:    inputDir,
		outputNames: outputNames,
		bestEffort:  bestEffort,
		out:         out,
		metrics:     opts.Metrics,
		publisher:   opts.Publisher,
		composer:    c,
		writer:      output.NewWriter(outputDir, c),
	}
}

func (r *runner) run(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer func() { r.metrics.ObserveRun(time.Since(start)) }()

	if err := r.writer.Prepare(); err != nil {
		return nil, err
	}

	docs := make([]*compose.OutputDocument, len(r.outputNames))
	byName := make(map[string]*compose.OutputDocument, len(r.outputNames))
	for i, name := range r.outputNames {
		docs[i] = compose.NewOutputDocument(name)
		byName[name] = docs[i]
	}

	entries, err := scan.Dir(r.inputDir)
	if err != nil {
		return nil, err
	}
	log.Info().Str("pipeline", r.name).Str("dir", r.inputDir).Int("files", len(entries)).Msg("scanned input directory")

	res := &Result{}
	for _, e := range entries {
		marks := make([]int, len(docs))
		for i, d := range docs {
			marks[i] = d.Mark()
		}

		err := r.processFile(ctx, e, byName)
		if err == nil {
			res.Files++
			r.metrics.FileProcessed("ok")
			continue
		}
		if !r.bestEffort {
			r.metrics.FileProcessed("failed")
			return nil, err
		}
		for i, d := range docs {
			d.Truncate(marks[i])
		}
		r.metrics.FileProcessed("skipped")
		res.Skipped = append(res.Skipped, e.Path)
		log.Warn().Err(err).Str("file", e.Path).Msg("skipping file")
		fmt.Fprintf(r.out, "Skipped: %s: %v\n", e.Path, err)
	}

	for _, d := range docs {
		p, err := r.writer.Write(d)
		if err != nil {
			return nil, err
		}
		r.metrics.OutputPages(d.Name, d.PageCount())
		res.Outputs = append(res.Outputs, Output{Name: d.Name, Path: p, Pages: d.PageCount()})
		fmt.Fprintf(r.out, "Merged %s pages saved to: %s\n", d.Name, p)
	}

	if r.publisher != nil {
		for i := range res.Outputs {
			url, err := r.publisher.Publish(ctx, res.Outputs[i].Path)
			if err != nil {
				return res, fmt.Errorf("publish %s: %w", res.Outputs[i].Name, err)
			}
			res.Outputs[i].URL = url
		}
	}
	return res, nil
}

func (r *runner) processFile(ctx context.Context, e scan.Entry, outputs map[string]*compose.OutputDocument) error {
	fmt.Fprintf(r.out, "Processing: %s\n", e.Path)

	data, err := scan.Read(e)
	if err != nil {
		return err
	}
	if mt, ok := scan.Sniff(data); !ok {
		log.Warn().Str("file", e.Path).Str("mime", mt).Msg("file content does not look like a PDF")
	}
	doc := compose.Document{Path: e.Path, Data: data}

	picks, err := r.pick(ctx, doc)
	if err != nil {
		return err
	}
	if r.reportPages {
		for _, p := range picks {
			fmt.Fprintf(r.out, "%s pages in %s: %v\n", p.Name, e.Name, p.Pages)
		}
	}
	for _, p := range picks {
		target, ok := outputs[p.Name]
		if !ok {
			return fmt.Errorf("no output document named %q", p.Name)
		}
		if err := r.composer.Append(doc, p.Pages, target); err != nil {
			return fmt.Errorf("append %s pages of %s: %w", p.Name, e.Name, err)
		}
		r.metrics.PagesSelected(p.Name, len(p.Pages))
	}
	log.Debug().Str("file", e.Path).Int("bytes", len(data)).Msg("file processed")
	return nil
}
