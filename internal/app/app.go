// Package app holds the start-up and shutdown steps shared by the
// command-line tools.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/local/pagesift/internal/config"
	"github.com/local/pagesift/internal/logger"
	"github.com/local/pagesift/internal/metrics"
	"github.com/local/pagesift/internal/pipeline"
	"github.com/local/pagesift/internal/storage"
)

// Env is the initialised runtime of one command invocation.
type Env struct {
	Service string
	RunID   string
	Config  config.Config
	Metrics *metrics.Recorder
}

// Start loads .env and the environment config and sets up logging.
func Start(service string) (*Env, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.FromEnv(service)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	runID := uuid.NewString()
	if err := logger.Init(logger.Options{
		Service:      service,
		RunID:        runID,
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info().
		Str("input", cfg.Pipeline.InputDir).
		Str("output", cfg.Pipeline.OutputDir).
		Bool("best_effort", cfg.Pipeline.BestEffort).
		Msg("starting")

	return &Env{Service: service, RunID: runID, Config: cfg, Metrics: metrics.New(service)}, nil
}

// Options builds the pipeline collaborators. Console progress goes to stdout;
// S3 publishing is enabled when a bucket is configured.
func (e *Env) Options(ctx context.Context) (pipeline.Options, error) {
	opts := pipeline.Options{Out: os.Stdout, Metrics: e.Metrics}
	if e.Config.Publish.Bucket != "" {
		pub, err := storage.NewS3Publisher(ctx, storage.S3Options{
			Bucket:          e.Config.Publish.Bucket,
			Prefix:          e.Config.Publish.Prefix,
			Region:          e.Config.Publish.Region,
			AccessKeyID:     e.Config.Publish.AccessKeyID,
			SecretAccessKey: e.Config.Publish.SecretAccessKey,
		})
		if err != nil {
			return opts, fmt.Errorf("init s3 publisher: %w", err)
		}
		opts.Publisher = pub
	}
	return opts, nil
}

// Finish writes the metrics textfile and logs the outcome of the run.
func (e *Env) Finish(res *pipeline.Result, runErr error) {
	if err := e.Metrics.WriteTextfile(e.Config.Metrics.Textfile); err != nil {
		log.Warn().Err(err).Str("path", e.Config.Metrics.Textfile).Msg("write metrics textfile")
	}
	if runErr != nil {
		log.Error().Err(runErr).Msg("run failed")
		return
	}
	ev := log.Info().Int("files", res.Files).Int("skipped", len(res.Skipped))
	for _, o := range res.Outputs {
		ev = ev.Int(o.Name, o.Pages)
	}
	ev.Msg("run complete")
}

// Exit flushes logs and terminates the process, printing err if set.
func Exit(err error) {
	logger.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
