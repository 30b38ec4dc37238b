// Package ingest turns submission documents into persisted submissions with samples.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	"github.com/joseph-ayodele/nanopore-tracker/internal/entity"
	"github.com/joseph-ayodele/nanopore-tracker/internal/extract"
	"github.com/joseph-ayodele/nanopore-tracker/internal/repository"
	"github.com/joseph-ayodele/nanopore-tracker/internal/tabular"
)

// Document is one submission form already split into pages.
type Document struct {
	Filename string
	Pages    []string
	Priority constants.Priority
}

// SubmissionResult is a committed submission plus what extraction left out.
type SubmissionResult struct {
	Submission    *entity.Submission
	Discarded     []extract.Discard
	Enhanced      []string
	Fallback      bool
	TableSections int
	LowConfidence int
}

// PageSource yields per-page text for a file on disk.
type PageSource interface {
	Pages(ctx context.Context, path string) ([]string, error)
}

// SheetReader parses CSV/XLSX batch files.
type SheetReader interface {
	ReadFile(path string) (*tabular.Sheet, error)
}

type Service struct {
	subs     repository.SubmissionRepository
	samples  repository.SampleRepository
	pipeline *extract.Pipeline
	pages    PageSource
	sheets   SheetReader
	now      func() time.Time
	random   io.Reader
	logger   *slog.Logger
}

type Option func(*Service)

func WithPageSource(p PageSource) Option { return func(s *Service) { s.pages = p } }
func WithSheetReader(r SheetReader) Option { return func(s *Service) { s.sheets = r } }

// WithClock fixes the clock and the random source used for submission numbers (tests).
func WithClock(now func() time.Time, random io.Reader) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
		s.random = random
	}
}

func NewService(subs repository.SubmissionRepository, samples repository.SampleRepository, pipeline *extract.Pipeline, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		subs:     subs,
		samples:  samples,
		pipeline: pipeline,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Ingest extracts and persists one document. The submission row exists from the
// start; it ends either completed with every sample or failed with none.
func (s *Service) Ingest(ctx context.Context, doc Document) (*SubmissionResult, error) {
	return s.ingest(ctx, doc.Filename, doc.Priority, func(ctx context.Context) (*extract.Result, []string, error) {
		res, err := s.pipeline.Run(ctx, doc.Pages)
		return res, nil, err
	})
}

// IngestFile reads path (PDF, TXT, CSV or XLSX) and ingests it. Unreadable files
// still leave a failed submission behind.
func (s *Service) IngestFile(ctx context.Context, path string, priority constants.Priority) (*SubmissionResult, error) {
	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return nil, common.NewValidationError(fmt.Sprintf("unsupported file type %q", filepath.Ext(path)))
	}
	return s.ingest(ctx, filepath.Base(path), priority, func(ctx context.Context) (*extract.Result, []string, error) {
		if format.IsTabular() {
			if s.sheets == nil {
				return nil, nil, common.NewExtractionError("batch sheets are not enabled", nil)
			}
			sheet, err := s.sheets.ReadFile(path)
			if err != nil {
				return nil, nil, err
			}
			res, err := s.pipeline.RunCandidates(ctx, sheet.Pages, sheet.Candidates)
			return res, sheet.Warnings, err
		}
		if s.pages == nil {
			return nil, nil, common.NewExtractionError("no page text source configured", nil)
		}
		pages, err := s.pages.Pages(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		res, err := s.pipeline.Run(ctx, pages)
		return res, nil, err
	})
}

// numberAttempts bounds retries when a generated submission number is taken.
const numberAttempts = 3

func (s *Service) createSubmission(ctx context.Context, start time.Time, filename string) (*entity.Submission, error) {
	for attempt := 1; ; attempt++ {
		number, err := NewSubmissionNumber(start, s.random)
		if err != nil {
			return nil, err
		}
		sub := &entity.Submission{
			SubmissionNumber: number,
			SourceFilename:   filename,
			Status:           constants.SubmissionProcessing,
		}
		err = s.subs.Create(ctx, sub)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, common.ErrConflict) || attempt == numberAttempts {
			return nil, err
		}
		s.logger.Warn("ingest.number.collision", "submission_number", number, "attempt", attempt)
	}
}

type runFunc func(ctx context.Context) (*extract.Result, []string, error)

func (s *Service) ingest(ctx context.Context, filename string, priority constants.Priority, run runFunc) (*SubmissionResult, error) {
	start := s.now()
	if p, ok := constants.ParsePriority(string(priority)); ok {
		priority = p
	} else {
		return nil, common.NewValidationError(fmt.Sprintf("unknown priority %q", priority))
	}

	sub, err := s.createSubmission(ctx, start, filename)
	if err != nil {
		return nil, err
	}
	log := s.logger.With("submission_id", sub.ID, "submission_number", sub.SubmissionNumber, "filename", filename)
	log.Info("ingest.start")

	res, extraWarnings, err := run(ctx)
	var warnings []string
	warnings = append(warnings, extraWarnings...)
	if res != nil {
		warnings = append(warnings, res.Warnings...)
	}
	if err != nil {
		return nil, s.fail(ctx, log, sub, err, warnings)
	}

	samples := make([]*entity.Sample, len(res.Samples))
	low := 0
	for i, sc := range res.Samples {
		samples[i] = toSample(sc, i+1, priority)
		if sc.LowConfidence {
			low++
		}
	}
	if low > 0 {
		warnings = append(warnings, fmt.Sprintf("%s: %d of %d samples scored below %.0f",
			common.KindLowConfidence, low, len(samples), s.pipeline.Config().LowConfidenceThreshold))
	}

	err = s.subs.Complete(ctx, repository.Completion{
		SubmissionID:   sub.ID,
		SubmitterName:  res.Metadata[extract.FieldSubmitterName],
		SubmitterEmail: res.Metadata[extract.FieldSubmitterEmail],
		SubmitterLab:   res.Metadata[extract.FieldLab],
		Metadata:       res.Metadata,
		Warnings:       warnings,
		Samples:        samples,
		Operator:       common.OperatorFromContext(ctx),
	})
	if err != nil {
		return nil, s.fail(ctx, log, sub, err, warnings)
	}

	stored, err := s.GetSubmissionWithSamples(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	log.Info("ingest.commit.ok",
		"samples", len(samples),
		"low_confidence", low,
		"discarded", len(res.Discarded),
		"fallback", res.Fallback,
		"elapsed_ms", s.now().Sub(start).Milliseconds(),
	)
	return &SubmissionResult{
		Submission:    stored,
		Discarded:     res.Discarded,
		Enhanced:      res.Enhanced,
		Fallback:      res.Fallback,
		TableSections: res.TableSections,
		LowConfidence: low,
	}, nil
}

// fail records the error on the submission. The write uses a context that survives
// cancellation of the request so the row never stays in processing.
func (s *Service) fail(ctx context.Context, log *slog.Logger, sub *entity.Submission, cause error, warnings []string) error {
	kind := common.Kind(cause)
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		kind = common.KindInternal
	}
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.subs.MarkFailed(mctx, sub.ID, kind, cause.Error(), warnings); err != nil {
		log.Error("ingest.mark_failed.error", "error", err)
	}
	log.Warn("ingest.failed", "error_kind", kind, "error", cause)
	return fmt.Errorf("submission %s: %w", sub.SubmissionNumber, cause)
}

func toSample(sc extract.Scored, number int, priority constants.Priority) *entity.Sample {
	return &entity.Sample{
		SampleNumber:    number,
		SourceIndex:     sc.SourceIndex,
		Name:            sc.Name,
		SampleType:      sc.SampleType,
		Concentration:   sc.Concentration,
		Volume:          sc.Volume,
		Qubit:           sc.Qubit,
		Nanodrop:        sc.Nanodrop,
		A260280:         sc.A260280,
		A260230:         sc.A260230,
		Buffer:          sc.Buffer,
		FieldConfidence: sc.FieldScores,
		ConfidenceScore: sc.Score,
		Grade:           string(sc.Grade),
		Issues:          sc.Issues,
		LowConfidence:   sc.LowConfidence,
		Status:          constants.SampleSubmitted,
		Priority:        priority,
	}
}

// GetSubmissionWithSamples loads a submission and its samples ordered by sample number.
func (s *Service) GetSubmissionWithSamples(ctx context.Context, id uuid.UUID) (*entity.Submission, error) {
	sub, err := s.subs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	samples, err := s.samples.ListBySubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	sub.Samples = samples
	return sub, nil
}

func (s *Service) ListSubmissions(ctx context.Context, f repository.ListFilter) ([]*entity.Submission, int, error) {
	if f.Status != "" {
		switch f.Status {
		case constants.SubmissionProcessing, constants.SubmissionCompleted, constants.SubmissionFailed:
		default:
			return nil, 0, common.NewValidationError("unknown submission status " + strings.TrimSpace(string(f.Status)))
		}
	}
	if f.Limit < 0 || f.Offset < 0 {
		return nil, 0, common.NewValidationError("limit and offset must not be negative")
	}
	return s.subs.List(ctx, f)
}

// DeleteSubmission removes the submission; samples and steps go with it.
func (s *Service) DeleteSubmission(ctx context.Context, id uuid.UUID) error {
	if err := s.subs.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("ingest.submission.deleted", "submission_id", id)
	return nil
}
