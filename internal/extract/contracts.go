package extract

import "context"

// Candidate is an unreconciled row. The concrete type is one of NumericRow,
// SpecialRow or FallbackSingle.
type Candidate interface {
	Label() string
	// SourceIndex is the row index as printed in the document, when there is one.
	SourceIndex() (int, bool)
	isCandidate()
}

// NumericRow is a table line carrying measurement columns. Readings printed as
// "-" or "N/A" are nil.
type NumericRow struct {
	Index    int
	Name     string
	Volume   *float64
	Qubit    *float64
	Nanodrop *float64
	A260280  *float64
	A260230  *float64
	Page     int
	Line     string
	// Ambiguous is set when the line also reads plausibly with a different label.
	Ambiguous bool
	// Attrs carries extra per-row columns from batch sheets (buffer, sample_type).
	Attrs map[string]string
}

// SpecialRow is a control or blank entry with no readings.
type SpecialRow struct {
	Index int
	Name  string
	Page  int
	Line  string
}

// FallbackSingle is the single sample built from whole-document fields when no
// table rows exist.
type FallbackSingle struct {
	Name          string
	Concentration *float64
	Volume        *float64
}

func (r NumericRow) Label() string { return r.Name }
func (r NumericRow) SourceIndex() (int, bool) { return r.Index, r.Index > 0 }
func (NumericRow) isCandidate() {}
func (r SpecialRow) Label() string { return r.Name }
func (r SpecialRow) SourceIndex() (int, bool) { return r.Index, r.Index > 0 }
func (SpecialRow) isCandidate() {}
func (f FallbackSingle) Label() string { return f.Name }
func (FallbackSingle) SourceIndex() (int, bool) { return 0, false }
func (FallbackSingle) isCandidate() {}

// Enhancer is the optional language-model collaborator. It receives the full
// document text and the field keys the patterns could not fill, and returns values
// for any of those keys it can find.
type Enhancer interface {
	Enhance(ctx context.Context, text string, missing []string) (map[string]string, error)
}
