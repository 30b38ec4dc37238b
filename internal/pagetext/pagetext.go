// Package pagetext turns submission files on disk into ordered per-page plain text.
package pagetext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	MaxPages  int    // 0 = no limit
}

// PageCounter reports the number of pages in a PDF.
type PageCounter func(path string) (int, error)

type Source struct {
	cfg     Config
	runner  Runner
	counter PageCounter
	logger  *slog.Logger
}

type Option func(*Source)

// WithRunner replaces the exec runner (tests).
func WithRunner(r Runner) Option { return func(s *Source) { s.runner = r } }

// WithPageCounter replaces the pdfcpu page counter (tests).
func WithPageCounter(pc PageCounter) Option { return func(s *Source) { s.counter = pc } }

func NewSource(cfg Config, logger *slog.Logger, opts ...Option) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	s := &Source{
		cfg:     cfg,
		runner:  execRunner{logger: logger},
		counter: api.PageCountFile,
		logger:  logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Pages returns the ordered page texts of the document at path.
func (s *Source) Pages(ctx context.Context, path string) ([]string, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))

	var (
		pages []string
		err   error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		pages, err = s.pdfPages(ctx, path)
	case constants.TXT:
		pages, err = s.textPages(path)
	default:
		return nil, common.NewExtractionError(fmt.Sprintf("unsupported document extension %q", ext), nil)
	}
	if err != nil {
		return nil, err
	}

	if s.cfg.MaxPages > 0 && len(pages) > s.cfg.MaxPages {
		s.logger.Warn("pagetext.pages.truncated", "path", path, "pages", len(pages), "max_pages", s.cfg.MaxPages)
		pages = pages[:s.cfg.MaxPages]
	}
	if allBlank(pages) {
		return nil, common.NewExtractionError("document has no extractable text", nil)
	}

	s.logger.Debug("pagetext.pages.ok",
		"path", path,
		"pages", len(pages),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return pages, nil
}

func (s *Source) pdfPages(ctx context.Context, path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, common.NewExtractionError("cannot read pdf", err)
	}
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := s.runner.Run(ctx, s.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, common.NewExtractionError("pdftotext failed: "+truncate(strings.TrimSpace(string(errb)), 512), err)
	}
	pages := SplitPages(string(out))

	if s.counter != nil {
		if n, cerr := s.counter(path); cerr != nil {
			s.logger.Warn("pagetext.pdf.page_count_failed", "path", path, "error", cerr)
		} else if n != len(pages) {
			s.logger.Warn("pagetext.pdf.page_count_mismatch", "path", path, "pdfcpu_pages", n, "text_pages", len(pages))
		}
	}
	return pages, nil
}

func (s *Source) textPages(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewExtractionError("cannot read text file", err)
	}
	return SplitPages(string(b)), nil
}

func allBlank(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}
