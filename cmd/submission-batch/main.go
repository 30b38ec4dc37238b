package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
	"github.com/joseph-ayodele/nanopore-tracker/internal/app"
	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	"github.com/joseph-ayodele/nanopore-tracker/internal/ingest"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dbPath   = flag.String("db", "", "sqlite database file (default: DB_DRIVER/DB_URL, else a temporary file)")
		dir      = flag.String("dir", "", "directory of submission files to ingest")
		file     = flag.String("file", "", "single submission file to ingest")
		out      = flag.String("out", "", "output XLSX file path (defaults to submissions.xlsx next to --dir)")
		exts     = flag.String("ext", "", "comma separated extensions to include (default: pdf,txt,csv,xlsx)")
		priority = flag.String("priority", "normal", "priority for every ingested sample")
		workers  = flag.Int("workers", 4, "files processed concurrently")
	)
	flag.Parse()

	if (*dir == "") == (*file == "") {
		printError("Error: exactly one of --dir or --file is required\n")
		os.Exit(1)
	}
	if _, ok := constants.ParsePriority(*priority); !ok {
		printError("Error: unknown --priority %q\n", *priority)
		os.Exit(1)
	}
	if *out == "" {
		base := *dir
		if base == "" {
			base = filepath.Dir(*file)
		}
		*out = filepath.Join(filepath.Dir(filepath.Clean(base)), "submissions.xlsx")
	}

	cfg := common.LoadConfig()
	logger := app.NewLogger(cfg.Log, os.Stdout)

	switch {
	case *dbPath != "":
		cfg.Database.Driver, cfg.Database.DSN = "sqlite", *dbPath
	case cfg.Database.DSN == "":
		tmp, err := os.MkdirTemp("", "submission-batch-")
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		defer os.RemoveAll(tmp)
		cfg.Database.Driver, cfg.Database.DSN = "sqlite", filepath.Join(tmp, "batch.db")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	var results []ingest.FileResult
	if *file != "" {
		r := ingest.FileResult{Path: *file}
		res, err := a.Ingest.IngestFile(ctx, *file, constants.Priority(*priority))
		if err != nil {
			r.Err, r.ErrorKind = err.Error(), common.Kind(err)
		} else {
			r.SubmissionID = res.Submission.ID.String()
			r.SubmissionNumber = res.Submission.SubmissionNumber
			r.SampleCount = res.Submission.SampleCount
		}
		results = append(results, r)
	} else {
		var include []string
		if *exts != "" {
			include = strings.Split(*exts, ",")
		}
		var stats ingest.DirStats
		results, stats, err = a.Ingest.IngestDirectory(ctx, ingest.DirectoryRequest{
			Root:        *dir,
			IncludeExts: include,
			SkipHidden:  true,
			Priority:    constants.Priority(*priority),
			Workers:     *workers,
		})
		if err != nil {
			logger.Error("directory ingest failed", "error", err)
			os.Exit(1)
		}
		logger.Info("directory ingest completed",
			"scanned", stats.Scanned, "matched", stats.Matched,
			"succeeded", stats.Succeeded, "failed", stats.Failed)
	}

	var ids []uuid.UUID
	for _, r := range results {
		if r.Err != "" {
			printError("FAILED %s: %s\n", r.Path, r.Err)
			continue
		}
		fmt.Printf("%s  %s  %d samples\n", r.SubmissionNumber, r.Path, r.SampleCount)
		ids = append(ids, uuid.MustParse(r.SubmissionID))
	}
	if len(ids) == 0 {
		printError("Error: no submissions were ingested\n")
		os.Exit(1)
	}

	xlsx, err := a.Export.ExportSubmissionsXLSX(ctx, ids)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("write workbook failed", "path", *out, "error", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d submissions)\n", *out, len(ids))
}
