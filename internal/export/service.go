package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	"github.com/joseph-ayodele/nanopore-tracker/internal/entity"
)

const (
	summarySheet = "Summary"
	samplesSheet = "Samples"
)

// SubmissionLoader is the read side of the ingestion service.
type SubmissionLoader interface {
	GetSubmissionWithSamples(ctx context.Context, id uuid.UUID) (*entity.Submission, error)
}

// Service renders submissions as XLSX workbooks.
type Service struct {
	loader SubmissionLoader
	logger *slog.Logger
}

func NewService(loader SubmissionLoader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{loader: loader, logger: logger}
}

var sampleHeaders = []string{
	"Submission",
	"#",
	"Source Index",
	"Sample Name",
	"Type",
	"Concentration (ng/µL)",
	"Volume (µL)",
	"Qubit (ng/µL)",
	"Nanodrop (ng/µL)",
	"A260/280",
	"A260/230",
	"Buffer",
	"Confidence",
	"Grade",
	"Low Confidence",
	"Status",
	"Priority",
	"Issues",
}

// ExportSubmissionsXLSX returns a workbook with one summary row per submission and
// every sample on a second sheet, in the order the ids were given.
func (s *Service) ExportSubmissionsXLSX(ctx context.Context, ids []uuid.UUID) ([]byte, error) {
	if len(ids) == 0 {
		return nil, common.NewValidationError("at least one submission id is required")
	}
	start := time.Now()
	subs := make([]*entity.Submission, 0, len(ids))
	for _, id := range ids {
		sub, err := s.loader.GetSubmissionWithSamples(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load submission %s: %w", id, err)
		}
		subs = append(subs, sub)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(samplesSheet); err != nil {
		return nil, err
	}

	if err := writeSummary(f, subs); err != nil {
		return nil, err
	}
	rows, err := writeSamples(f, subs)
	if err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"submissions", len(subs),
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportSubmissionXLSX is ExportSubmissionsXLSX for one submission.
func (s *Service) ExportSubmissionXLSX(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return s.ExportSubmissionsXLSX(ctx, []uuid.UUID{id})
}

func writeSummary(f *excelize.File, subs []*entity.Submission) error {
	// metadata keys vary per document; union them into trailing columns
	keySet := map[string]struct{}{}
	for _, sub := range subs {
		for k := range sub.Metadata {
			keySet[k] = struct{}{}
		}
	}
	metaKeys := make([]string, 0, len(keySet))
	for k := range keySet {
		metaKeys = append(metaKeys, k)
	}
	sort.Strings(metaKeys)

	header := []any{"Submission", "Source File", "Status", "Submitter", "Email", "Lab", "Samples", "Created", "Warnings", "Error"}
	for _, k := range metaKeys {
		header = append(header, k)
	}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return err
	}
	for i, sub := range subs {
		row := []any{
			sub.SubmissionNumber,
			sub.SourceFilename,
			string(sub.Status),
			sub.SubmitterName,
			sub.SubmitterEmail,
			sub.SubmitterLab,
			sub.SampleCount,
			sub.CreatedAt.UTC().Format(time.RFC3339),
			truncate(strings.Join(sub.Warnings, "; "), 500),
			errorText(sub),
		}
		for _, k := range metaKeys {
			row = append(row, sub.Metadata[k])
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 22)
	_ = f.SetColWidth(summarySheet, "B", "B", 30)
	_ = f.SetColWidth(summarySheet, "D", "F", 24)
	_ = f.SetColWidth(summarySheet, "I", "J", 48)
	return nil
}

func writeSamples(f *excelize.File, subs []*entity.Submission) (int, error) {
	header := make([]any, len(sampleHeaders))
	for i, h := range sampleHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(samplesSheet, "A1", &header); err != nil {
		return 0, err
	}
	row := 2
	for _, sub := range subs {
		for _, sm := range sub.Samples {
			vals := []any{
				sub.SubmissionNumber,
				sm.SampleNumber,
				optInt(sm.SourceIndex),
				sm.Name,
				string(sm.SampleType),
				optFloat(sm.Concentration),
				optFloat(sm.Volume),
				optFloat(sm.Qubit),
				optFloat(sm.Nanodrop),
				optFloat(sm.A260280),
				optFloat(sm.A260230),
				sm.Buffer,
				sm.ConfidenceScore,
				sm.Grade,
				sm.LowConfidence,
				string(sm.Status),
				string(sm.Priority),
				truncate(strings.Join(sm.Issues, "; "), 300),
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(samplesSheet, cell, &vals); err != nil {
				return 0, err
			}
			row++
		}
	}
	_ = f.SetColWidth(samplesSheet, "A", "A", 22)
	_ = f.SetColWidth(samplesSheet, "D", "D", 28)
	_ = f.SetColWidth(samplesSheet, "F", "K", 12)
	_ = f.SetColWidth(samplesSheet, "R", "R", 60)
	return row - 2, nil
}

// optional readings stay empty cells rather than 0
func optFloat(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func optInt(p *int) any {
	if p == nil {
		return ""
	}
	return *p
}

func errorText(sub *entity.Submission) string {
	if sub.ErrorKind == "" {
		return ""
	}
	return truncate(sub.ErrorKind+": "+sub.ErrorMessage, 300)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
