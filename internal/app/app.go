// Package app assembles the tracker from configuration. Binaries and tests share it.
package app

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	"github.com/joseph-ayodele/nanopore-tracker/internal/export"
	"github.com/joseph-ayodele/nanopore-tracker/internal/extract"
	"github.com/joseph-ayodele/nanopore-tracker/internal/ingest"
	"github.com/joseph-ayodele/nanopore-tracker/internal/llm"
	"github.com/joseph-ayodele/nanopore-tracker/internal/llm/openai"
	"github.com/joseph-ayodele/nanopore-tracker/internal/pagetext"
	"github.com/joseph-ayodele/nanopore-tracker/internal/repository"
	"github.com/joseph-ayodele/nanopore-tracker/internal/server"
	"github.com/joseph-ayodele/nanopore-tracker/internal/tabular"
	"github.com/joseph-ayodele/nanopore-tracker/internal/workflow"
)

// App holds the wired services over one database handle.
type App struct {
	DB       *repository.DB
	Pipeline *extract.Pipeline
	Ingest   *ingest.Service
	Workflow *workflow.Service
	Export   *export.Service
	Logger   *slog.Logger
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg common.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ExtractConfig applies the configured thresholds to the default patterns.
func ExtractConfig(cfg common.ExtractionConfig) extract.Config {
	ec := extract.DefaultConfig()
	if cfg.LowConfidenceThreshold > 0 {
		ec.LowConfidenceThreshold = cfg.LowConfidenceThreshold
	}
	if cfg.Decrement > 0 {
		ec.Decrement = float64(cfg.Decrement)
	}
	return ec
}

// NewPipeline builds the extraction pipeline, with the language model attached when
// LLM_ENABLED is set.
func NewPipeline(cfg *common.Config, logger *slog.Logger) *extract.Pipeline {
	opts := []extract.Option{extract.WithLogger(logger)}
	if cfg.LLM.Enabled {
		client := openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		opts = append(opts, extract.WithEnhancer(llm.NewEnhancer(client, logger), cfg.LLM.Timeout))
		logger.Info("llm.enhance.enabled", "model", cfg.LLM.Model, "base_url", cfg.LLM.BaseURL)
	}
	return extract.NewPipeline(ExtractConfig(cfg.Extraction), opts...)
}

// New opens the database, applies the schema and wires every service.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := server.ConnectDB(ctx, cfg.Database, true, logger)
	if err != nil {
		return nil, err
	}
	return Wire(db, cfg, logger), nil
}

// Wire builds the services over an open database.
func Wire(db *repository.DB, cfg *common.Config, logger *slog.Logger) *App {
	pipeline := NewPipeline(cfg, logger)
	subs := repository.NewSubmissionRepository(db, logger)
	samples := repository.NewSampleRepository(db, logger)
	ing := ingest.NewService(subs, samples, pipeline, logger,
		ingest.WithPageSource(pagetext.NewSource(pagetext.Config{
			Pdftotext: cfg.Extraction.Pdftotext,
			MaxPages:  cfg.Extraction.MaxPages,
		}, logger)),
		ingest.WithSheetReader(tabular.NewReader(pipeline.Config(), logger)),
	)
	return &App{
		DB:       db,
		Pipeline: pipeline,
		Ingest:   ing,
		Workflow: workflow.NewService(samples, logger),
		Export:   export.NewService(ing, logger),
		Logger:   logger,
	}
}

// TrackerServer exposes the services over gRPC.
func (a *App) TrackerServer() *server.TrackerServer {
	return server.NewTrackerServer(a.Ingest, a.Workflow, a.Export, a.Logger)
}

func (a *App) Close() { a.DB.Close() }
