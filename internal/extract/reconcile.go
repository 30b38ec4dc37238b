package extract

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
)

// Kind tags which candidate variant a draft came from.
type Kind string

const (
	KindNumeric  Kind = "numeric"
	KindSpecial  Kind = "special"
	KindFallback Kind = "fallback"
)

// FieldSource records which strategy produced a field.
type FieldSource string

const (
	SourceTable    FieldSource = "table"
	SourceColumn   FieldSource = "column" // batch sheet cell
	SourceDocument FieldSource = "document"
	SourceDefault  FieldSource = "default"
	SourceLLM      FieldSource = "llm"
)

// Provenance is what the scorer needs to know about how a draft was assembled.
type Provenance struct {
	Sources   map[string]FieldSource
	Ambiguous map[string]bool
	// NearMiss is the header-like word found in a label that was kept anyway.
	NearMiss string
}

// Draft is a finished but unscored sample.
type Draft struct {
	Kind          Kind
	SourceIndex   *int
	Page          int
	Name          string
	SampleType    constants.SampleType
	Concentration *float64
	Volume        *float64
	Qubit         *float64
	Nanodrop      *float64
	A260280       *float64
	A260230       *float64
	Buffer        string
	Provenance    Provenance
}

type Discard struct {
	Label  string
	Reason string
}

// Reconciliation is the submission-level outcome of merging rows with document fields.
type Reconciliation struct {
	Metadata  map[string]string
	Drafts    []Draft
	Discarded []Discard
	Warnings  []string
	Fallback  bool
}

// Reconcile merges deduplicated candidates with document fields. Header-like
// candidates are discarded. With no candidates at all, a single fallback draft is
// built from the document sample name when one exists and is not header-like.
func Reconcile(cfg Config, cands []Candidate, doc DocumentFields) Reconciliation {
	rec := Reconciliation{Metadata: make(map[string]string, len(doc.Values))}
	for k, v := range doc.Values {
		rec.Metadata[k] = v
	}

	defType, typeSrc := documentSampleType(cfg, doc)
	buffer, bufferSrc := docValue(doc, FieldBuffer)

	base := func(kind Kind) Draft {
		d := Draft{
			Kind:       kind,
			SampleType: defType,
			Buffer:     buffer,
			Provenance: Provenance{
				Sources:   map[string]FieldSource{ScoreName: SourceTable, ScoreSampleType: typeSrc},
				Ambiguous: map[string]bool{},
			},
		}
		if buffer != "" {
			d.Provenance.Sources[ScoreBuffer] = bufferSrc
			if doc.IsAmbiguous(FieldBuffer) {
				d.Provenance.Ambiguous[ScoreBuffer] = true
			}
		}
		if typeSrc == SourceDocument && doc.IsAmbiguous(FieldSampleType) {
			d.Provenance.Ambiguous[ScoreSampleType] = true
		}
		return d
	}

	if len(cands) == 0 {
		if d, ok := fallbackDraft(cfg, doc, base); ok {
			rec.Drafts = append(rec.Drafts, d)
			rec.Fallback = true
		} else if name := doc.Get(FieldSampleName); name != "" {
			rec.Discarded = append(rec.Discarded, Discard{Label: name, Reason: "document sample name looks like a header"})
		}
		return rec
	}

	for _, c := range cands {
		if header, why := candidateIsHeader(cfg, c); header {
			rec.Discarded = append(rec.Discarded, Discard{Label: c.Label(), Reason: why})
			continue
		}
		var d Draft
		switch v := c.(type) {
		case NumericRow:
			d = base(KindNumeric)
			d.Name = v.Name
			d.Page = v.Page
			d.Volume, d.Qubit, d.Nanodrop = v.Volume, v.Qubit, v.Nanodrop
			d.A260280, d.A260230 = v.A260280, v.A260230
			d.Concentration = v.Qubit
			rowSrc := SourceTable
			if v.Attrs != nil {
				rowSrc = SourceColumn
				applyAttrs(&d, v.Attrs)
			}
			for _, f := range []string{ScoreName, ScoreVolume, ScoreConcentration, ScoreNanodrop, ScoreA260280, ScoreA260230} {
				d.Provenance.Sources[f] = rowSrc
			}
			if v.Ambiguous {
				d.Provenance.Ambiguous[ScoreName] = true
			}
		case SpecialRow:
			d = base(KindSpecial)
			d.Name = v.Name
			d.Page = v.Page
		case FallbackSingle:
			d = base(KindFallback)
			d.Name = v.Name
			d.Concentration, d.Qubit, d.Volume = v.Concentration, v.Concentration, v.Volume
			d.Provenance.Sources[ScoreName] = SourceDocument
			d.Provenance.Sources[ScoreConcentration] = SourceDocument
			d.Provenance.Sources[ScoreVolume] = SourceDocument
		default:
			panic(fmt.Sprintf("extract: unhandled candidate %T", c))
		}
		if idx, ok := c.SourceIndex(); ok {
			d.SourceIndex = &idx
		}
		if d.Kind != KindSpecial {
			d.Provenance.NearMiss = cfg.Denylist.NearMissOf(d.Name)
		}
		rec.Drafts = append(rec.Drafts, d)
	}

	rec.Warnings = append(rec.Warnings, indexWarnings(rec.Drafts)...)
	return rec
}

func candidateIsHeader(cfg Config, c Candidate) (bool, string) {
	if header, why := cfg.Denylist.IsHeader(c.Label()); header {
		return true, why
	}
	if row, ok := c.(NumericRow); ok {
		keys := make([]string, 0, len(row.Attrs))
		for k := range row.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if header, why := cfg.Denylist.IsHeader(row.Attrs[k]); header {
				return true, k + ": " + why
			}
		}
	}
	return false, ""
}

func applyAttrs(d *Draft, attrs map[string]string) {
	if b := strings.TrimSpace(attrs[FieldBuffer]); b != "" {
		d.Buffer = b
		d.Provenance.Sources[ScoreBuffer] = SourceColumn
		delete(d.Provenance.Ambiguous, ScoreBuffer)
	}
	if t := strings.TrimSpace(attrs[FieldSampleType]); t != "" {
		if st, ok := constants.CanonicalizeSampleType(t); ok {
			d.SampleType = st
			d.Provenance.Sources[ScoreSampleType] = SourceColumn
			delete(d.Provenance.Ambiguous, ScoreSampleType)
		}
	}
}

func fallbackDraft(cfg Config, doc DocumentFields, base func(Kind) Draft) (Draft, bool) {
	name := doc.Get(FieldSampleName)
	if name == "" {
		return Draft{}, false
	}
	if header, _ := cfg.Denylist.IsHeader(name); header {
		return Draft{}, false
	}
	fb := FallbackSingle{
		Name:          name,
		Concentration: parseReading(doc.Get(FieldConcentration)),
		Volume:        parseReading(doc.Get(FieldVolume)),
	}
	d := base(KindFallback)
	d.Name = fb.Name
	d.Concentration, d.Qubit, d.Volume = fb.Concentration, fb.Concentration, fb.Volume
	src := SourceDocument
	if doc.FromLLM[FieldSampleName] {
		src = SourceLLM
	}
	d.Provenance.Sources[ScoreName] = src
	d.Provenance.Sources[ScoreConcentration] = SourceDocument
	d.Provenance.Sources[ScoreVolume] = SourceDocument
	for field, key := range map[string]string{ScoreName: FieldSampleName, ScoreConcentration: FieldConcentration, ScoreVolume: FieldVolume} {
		if doc.IsAmbiguous(key) {
			d.Provenance.Ambiguous[field] = true
		}
	}
	d.Provenance.NearMiss = cfg.Denylist.NearMissOf(d.Name)
	return d, true
}

func documentSampleType(cfg Config, doc DocumentFields) (constants.SampleType, FieldSource) {
	def := cfg.DefaultSampleType
	if def == "" {
		def = constants.SampleTypeDNA
	}
	raw, src := docValue(doc, FieldSampleType)
	if raw == "" {
		return def, SourceDefault
	}
	if st, ok := constants.CanonicalizeSampleType(raw); ok {
		return st, src
	}
	return def, SourceDefault
}

func docValue(doc DocumentFields, key string) (string, FieldSource) {
	v := doc.Get(key)
	if v == "" {
		return "", ""
	}
	if doc.FromLLM[key] {
		return v, SourceLLM
	}
	return v, SourceDocument
}

const maxListedGaps = 10

// indexWarnings reports printed row indices that repeat or skip numbers. Stored
// sample numbers never depend on them.
func indexWarnings(drafts []Draft) []string {
	counts := map[int]int{}
	var order []int
	for _, d := range drafts {
		if d.SourceIndex == nil {
			continue
		}
		i := *d.SourceIndex
		if counts[i] == 0 {
			order = append(order, i)
		}
		counts[i]++
	}
	if len(order) == 0 {
		return nil
	}
	var out []string
	for _, i := range order {
		if counts[i] > 1 {
			out = append(out, fmt.Sprintf("printed row index %d appears %d times", i, counts[i]))
		}
	}
	sorted := append([]int(nil), order...)
	sort.Ints(sorted)
	var missing []string
	for i := 1; i < len(sorted); i++ {
		for n := sorted[i-1] + 1; n < sorted[i]; n++ {
			missing = append(missing, strconv.Itoa(n))
		}
	}
	switch {
	case len(missing) > maxListedGaps:
		out = append(out, fmt.Sprintf("printed row indices skip %d numbers, first %s",
			len(missing), strings.Join(missing[:maxListedGaps], ", ")))
	case len(missing) > 0:
		out = append(out, "printed row indices skip "+strings.Join(missing, ", "))
	}
	return out
}
