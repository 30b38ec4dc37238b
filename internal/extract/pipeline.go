package extract

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
)

// Result is everything the ingestion service needs from one document.
type Result struct {
	Metadata      map[string]string
	Samples       []Scored
	Discarded     []Discard
	Warnings      []string
	TableSections int
	Fallback      bool
	Enhanced      []string // document keys filled by the language model
}

// Pipeline runs stitch, row extraction, reconciliation and scoring. It holds no
// per-document state and is safe for concurrent use.
type Pipeline struct {
	cfg            Config
	enhancer       Enhancer
	enhanceTimeout time.Duration
	logger         *slog.Logger
}

type Option func(*Pipeline)

// WithEnhancer enables language-model gap filling bounded by timeout.
func WithEnhancer(e Enhancer, timeout time.Duration) Option {
	return func(p *Pipeline) {
		p.enhancer = e
		if timeout > 0 {
			p.enhanceTimeout = timeout
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewPipeline(cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, enhanceTimeout: 20 * time.Second, logger: slog.Default()}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) Config() Config { return p.cfg }

// Run extracts samples from per-page text.
func (p *Pipeline) Run(ctx context.Context, pages []string) (*Result, error) {
	if !hasText(pages) {
		return nil, common.NewExtractionError("document has no usable text", nil)
	}
	region := Stitch(p.cfg, pages)
	cands := Dedup(ExtractRows(p.cfg, region))
	p.logger.Debug("extract.rows",
		"pages", len(pages),
		"sections", region.Sections,
		"region_lines", len(region.Lines),
		"candidates", len(cands),
	)
	res, err := p.finish(ctx, pages, cands)
	if res != nil {
		res.TableSections = region.Sections
	}
	return res, err
}

// RunCandidates skips table stitching for sources that are already row-shaped,
// such as batch spreadsheets. pages may be empty.
func (p *Pipeline) RunCandidates(ctx context.Context, pages []string, cands []Candidate) (*Result, error) {
	if len(cands) == 0 && !hasText(pages) {
		return nil, common.NewExtractionError("batch file has no rows", nil)
	}
	return p.finish(ctx, pages, Dedup(cands))
}

func (p *Pipeline) finish(ctx context.Context, pages []string, cands []Candidate) (*Result, error) {
	doc := ExtractDocumentFields(p.cfg, pages)
	res := &Result{}

	if p.enhancer != nil {
		want := p.cfg.EnhanceFields
		if len(cands) == 0 {
			want = append(append([]string(nil), want...), FieldSampleName)
		}
		if missing := doc.Missing(want); len(missing) > 0 {
			filled, warn := p.enhance(ctx, pages, missing, &doc)
			res.Enhanced = filled
			if warn != "" {
				res.Warnings = append(res.Warnings, warn)
			}
		}
	}

	rec := Reconcile(p.cfg, cands, doc)
	res.Metadata = rec.Metadata
	res.Discarded = rec.Discarded
	res.Fallback = rec.Fallback
	res.Warnings = append(res.Warnings, rec.Warnings...)

	for _, d := range rec.Drafts {
		res.Samples = append(res.Samples, Score(p.cfg, d))
	}
	if len(res.Samples) == 0 {
		return res, common.NewValidationError("no valid samples remain after filtering")
	}
	return res, nil
}

// enhance asks the model for missing fields. A slow or failing model never fails
// the document; the pattern result stands and a warning is returned instead.
func (p *Pipeline) enhance(ctx context.Context, pages []string, missing []string, doc *DocumentFields) ([]string, string) {
	start := time.Now()
	ectx, cancel := context.WithTimeout(ctx, p.enhanceTimeout)
	defer cancel()

	type reply struct {
		vals map[string]string
		err  error
	}
	ch := make(chan reply, 1)
	go func() {
		v, err := p.enhancer.Enhance(ectx, strings.Join(pages, "\n\f\n"), missing)
		ch <- reply{v, err}
	}()

	var r reply
	select {
	case r = <-ch:
	case <-ectx.Done():
		r.err = ectx.Err()
	}
	if r.err != nil {
		if errors.Is(r.err, context.DeadlineExceeded) {
			p.logger.Warn("llm.enhance.timeout", "timeout", p.enhanceTimeout, "missing", missing)
			return nil, "language model enhancement timed out; pattern results used"
		}
		p.logger.Warn("llm.enhance.failed", "error", r.err, "missing", missing)
		return nil, "language model enhancement failed; pattern results used"
	}
	filled := doc.Merge(r.vals, missing)
	p.logger.Info("llm.enhance.ok",
		"missing", missing,
		"filled", filled,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return filled, ""
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
