// Package tabular reads CSV and XLSX batch sheets (one sample per row) into
// extraction candidates.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	"github.com/joseph-ayodele/nanopore-tracker/internal/extract"
)

// Sheet is a parsed batch file. Pages holds a synthesized labeled-field page built
// from the submission-level columns so document field extraction sees them.
type Sheet struct {
	Candidates []extract.Candidate
	Pages      []string
	Warnings   []string
	Columns    []string
}

type Reader struct {
	cfg    extract.Config
	logger *slog.Logger
}

func NewReader(cfg extract.Config, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{cfg: cfg, logger: logger}
}

// ReadFile dispatches on extension (csv, xlsx).
func (r *Reader) ReadFile(path string) (*Sheet, error) {
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.CSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, common.NewExtractionError("cannot open csv", err)
		}
		defer func() { _ = f.Close() }()
		return r.ReadCSV(f)
	case constants.XLSX:
		return r.ReadXLSX(path)
	}
	return nil, common.NewExtractionError(fmt.Sprintf("not a batch sheet: %q", filepath.Base(path)), nil)
}

func (r *Reader) ReadCSV(src io.Reader) (*Sheet, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, common.NewExtractionError("malformed csv", err)
	}
	return r.build(records)
}

func (r *Reader) ReadXLSX(path string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, common.NewExtractionError("cannot open xlsx", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			r.logger.Warn("tabular.xlsx.close_failed", "path", path, "error", cerr)
		}
	}()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.NewExtractionError("xlsx has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, common.NewExtractionError("cannot read xlsx rows", err)
	}
	return r.build(rows)
}

var errNoHeader = errors.New("no header row with a sample name column")

func (r *Reader) build(records [][]string) (*Sheet, error) {
	hdrAt, cols := -1, map[string]int(nil)
	for i, rec := range records {
		m := mapColumns(rec)
		if _, ok := m[colName]; ok {
			hdrAt, cols = i, m
			break
		}
	}
	if hdrAt < 0 {
		return nil, common.NewExtractionError("unrecognised batch sheet", errNoHeader)
	}

	sheet := &Sheet{}
	for role := range cols {
		sheet.Columns = append(sheet.Columns, role)
	}
	doc := map[string]string{}
	n := 0
	for i, rec := range records[hdrAt+1:] {
		lineNo := hdrAt + i + 2
		cell := func(role string) string {
			idx, ok := cols[role]
			if !ok || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}
		for _, k := range []string{colSubmitterName, colSubmitterEmail, colLab, colOrganism} {
			if v := cell(k); v != "" && doc[k] == "" {
				doc[k] = v
			}
		}
		name := strings.Join(strings.Fields(cell(colName)), " ")
		if name == "" {
			continue
		}
		n++
		index := n
		if raw := cell(colIndex); raw != "" {
			if v, err := strconv.Atoi(strings.TrimSuffix(raw, ".")); err == nil && v > 0 {
				index = v
			} else {
				sheet.Warnings = append(sheet.Warnings, fmt.Sprintf("row %d: index %q is not a number", lineNo, raw))
			}
		}

		readings := map[string]*float64{}
		for _, k := range []string{colVolume, colQubit, colNanodrop, colA260280, colA260230} {
			v, ok := parseCell(cell(k))
			if !ok {
				sheet.Warnings = append(sheet.Warnings, fmt.Sprintf("row %d: %s %q is not a number", lineNo, k, cell(k)))
			}
			readings[k] = v
		}
		allNil := true
		for _, v := range readings {
			if v != nil {
				allNil = false
			}
		}
		if canon, ok := r.cfg.CanonicalSpecial(name); ok && allNil {
			sheet.Candidates = append(sheet.Candidates, extract.SpecialRow{Index: index, Name: canon, Page: 1, Line: strings.Join(rec, ",")})
			continue
		}
		attrs := map[string]string{}
		if v := cell(colBuffer); v != "" {
			attrs[extract.FieldBuffer] = v
		}
		if v := cell(colSampleType); v != "" {
			attrs[extract.FieldSampleType] = v
		}
		sheet.Candidates = append(sheet.Candidates, extract.NumericRow{
			Index:    index,
			Name:     name,
			Volume:   readings[colVolume],
			Qubit:    readings[colQubit],
			Nanodrop: readings[colNanodrop],
			A260280:  readings[colA260280],
			A260230:  readings[colA260230],
			Page:     1,
			Line:     strings.Join(rec, ","),
			Attrs:    attrs,
		})
	}

	sheet.Pages = []string{documentPage(doc)}
	r.logger.Debug("tabular.sheet.parsed",
		"rows", len(records)-hdrAt-1,
		"candidates", len(sheet.Candidates),
		"warnings", len(sheet.Warnings),
	)
	return sheet, nil
}

// parseCell returns nil for blanks and placeholders. ok is false for text that is
// neither a number nor a placeholder.
func parseCell(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "-", "--", "na", "n/a":
		return nil, true
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

func documentPage(doc map[string]string) string {
	var b strings.Builder
	line := func(label, key string) {
		if v := doc[key]; v != "" {
			b.WriteString(label)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString("\n")
		}
	}
	line("Submitter Name", colSubmitterName)
	line("Email", colSubmitterEmail)
	line("Lab", colLab)
	line("Organism", colOrganism)
	return b.String()
}
