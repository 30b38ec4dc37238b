package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
)

// FileResult is the per-file outcome of a directory ingest.
type FileResult struct {
	Path             string
	SubmissionID     string
	SubmissionNumber string
	SampleCount      int
	ErrorKind        string
	Err              string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

type DirectoryRequest struct {
	Root        string
	IncludeExts []string // empty = every supported extension
	SkipHidden  bool
	Priority    constants.Priority
	Workers     int
}

// IngestDirectory walks root and ingests every matching file with at most Workers
// files in flight. One file failing never stops the others.
func (s *Service) IngestDirectory(ctx context.Context, req DirectoryRequest) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(req.Root) == "" {
		return nil, DirStats{}, common.NewValidationError("root path is required")
	}
	exts := constants.AllowedExtensions
	if len(req.IncludeExts) > 0 {
		exts = map[string]struct{}{}
		for _, e := range req.IncludeExts {
			if e = constants.NormalizeExt(e); e != "" {
				exts[e] = struct{}{}
			}
		}
	}

	var (
		stats DirStats
		paths []string
		early []FileResult
	)
	err := filepath.WalkDir(req.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == req.Root {
				return walkErr
			}
			early = append(early, FileResult{Path: path, Err: walkErr.Error(), ErrorKind: common.KindInternal})
			return nil
		}
		if path != req.Root && req.SkipHidden && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if _, ok := exts[constants.NormalizeExt(filepath.Ext(path))]; !ok {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk: %w", err)
	}
	stats.Matched = uint32(len(paths))

	workers := req.Workers
	if workers <= 0 {
		workers = 4
	}
	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{Path: p, Err: err.Error(), ErrorKind: common.KindInternal}
				return nil
			}
			res, err := s.IngestFile(gctx, p, req.Priority)
			if err != nil {
				results[i] = FileResult{Path: p, Err: err.Error(), ErrorKind: common.Kind(err)}
				return nil
			}
			results[i] = FileResult{
				Path:             p,
				SubmissionID:     res.Submission.ID.String(),
				SubmissionNumber: res.Submission.SubmissionNumber,
				SampleCount:      res.Submission.SampleCount,
			}
			return nil
		})
	}
	_ = g.Wait() // workers record failures per file and never return an error

	out := append(early, results...)
	for _, r := range out {
		if r.Err == "" {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
	}
	s.logger.Info("ingest.directory.done",
		"root", req.Root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
	)
	if errors.Is(ctx.Err(), context.Canceled) {
		return out, stats, ctx.Err()
	}
	return out, stats, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
