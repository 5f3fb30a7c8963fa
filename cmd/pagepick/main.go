package main

import (
	"context"

	"github.com/local/pagesift/internal/app"
	"github.com/local/pagesift/internal/pipeline"
)

func main() {
	app.Exit(run())
}

func run() error {
	env, err := app.Start("pagepick")
	if err != nil {
		return err
	}
	ctx := context.Background()

	opts, err := env.Options(ctx)
	if err != nil {
		return err
	}

	p := pipeline.NewSelect(pipeline.SelectConfig{
		InputDir:    env.Config.Pipeline.InputDir,
		OutputDir:   env.Config.Pipeline.OutputDir,
		PageIndices: env.Config.Selector.PageIndices,
		BestEffort:  env.Config.Pipeline.BestEffort,
	}, opts)

	res, err := p.Run(ctx)
	env.Finish(res, err)
	return err
}
