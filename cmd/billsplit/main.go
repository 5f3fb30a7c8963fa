package main

import (
	"context"

	"github.com/local/pagesift/internal/app"
	"github.com/local/pagesift/internal/classify"
	"github.com/local/pagesift/internal/pipeline"
	"github.com/local/pagesift/internal/store"
	"github.com/local/pagesift/internal/textlayer"
)

func main() {
	app.Exit(run())
}

func run() error {
	env, err := app.Start("billsplit")
	if err != nil {
		return err
	}
	ctx := context.Background()
	cfg := env.Config

	opener, err := textlayer.New(cfg.Text.Backend)
	if err != nil {
		return err
	}
	copts := []classify.Option{classify.WithPolicy(textlayer.JoinPolicy{
		Separator:  cfg.Text.Separator,
		DecodeRuns: cfg.Text.DecodeRuns,
	})}

	// Match cache (optional)
	if cfg.Cache.RedisURL != "" {
		mc, err := store.NewMatchCache(cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			return err
		}
		defer mc.Close()
		copts = append(copts, classify.WithCache(mc))
	}

	opts, err := env.Options(ctx)
	if err != nil {
		return err
	}

	p := pipeline.NewClassify(pipeline.ClassifyConfig{
		InputDir:   cfg.Pipeline.InputDir,
		OutputDir:  cfg.Pipeline.OutputDir,
		Categories: cfg.Classifier.Categories,
		BestEffort: cfg.Pipeline.BestEffort,
	}, classify.NewClassifier(opener, copts...), opts)

	res, err := p.Run(ctx)
	env.Finish(res, err)
	return err
}
