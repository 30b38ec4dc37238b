// Command extractdoc runs the extraction pipeline on one file and prints the result
// as JSON. Nothing is written to a database.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
	"github.com/joseph-ayodele/nanopore-tracker/internal/app"
	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	"github.com/joseph-ayodele/nanopore-tracker/internal/extract"
	"github.com/joseph-ayodele/nanopore-tracker/internal/pagetext"
	"github.com/joseph-ayodele/nanopore-tracker/internal/tabular"
)

func main() {
	cfg := common.LoadConfig()
	logger := app.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "extractdoc <file.pdf|.txt|.csv|.xlsx>")
		os.Exit(2)
	}
	path := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pipeline := app.NewPipeline(cfg, logger)
	start := time.Now()

	var (
		res *extract.Result
		err error
	)
	if constants.MapExtToFormat(filepath.Ext(path)).IsTabular() {
		var sheet *tabular.Sheet
		sheet, err = tabular.NewReader(pipeline.Config(), logger).ReadFile(path)
		if err == nil {
			res, err = pipeline.RunCandidates(ctx, sheet.Pages, sheet.Candidates)
		}
	} else {
		var pages []string
		pages, err = pagetext.NewSource(pagetext.Config{
			Pdftotext: cfg.Extraction.Pdftotext,
			MaxPages:  cfg.Extraction.MaxPages,
		}, logger).Pages(ctx, path)
		if err == nil {
			res, err = pipeline.Run(ctx, pages)
		}
	}
	if err != nil {
		logger.Error("extraction failed", "path", path, "error_kind", common.Kind(err), "error", err,
			"duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	logger.Info("extraction OK", "path", path, "samples", len(res.Samples),
		"duration_ms", time.Since(start).Milliseconds())
}
