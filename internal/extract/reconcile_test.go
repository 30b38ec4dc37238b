package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
)

func TestReconcileDiscardsHeaderRowsOnly(t *testing.T) {
	cfg := DefaultConfig()
	cands := []Candidate{
		NumericRow{Index: 1, Name: "S-001", Volume: ptr(20), Qubit: ptr(10), Nanodrop: ptr(12), A260280: ptr(1.8)},
		NumericRow{Index: 2, Name: "ratio", Volume: ptr(1), Qubit: ptr(2), Nanodrop: ptr(3), A260280: ptr(4)},
		NumericRow{Index: 3, Name: "S-003", Volume: ptr(20), Qubit: ptr(0), Nanodrop: ptr(12), A260280: ptr(1.8)},
		SpecialRow{Index: 4, Name: "BLANK"},
	}

	rec := Reconcile(cfg, cands, DocumentFields{})
	var names []string
	for _, d := range rec.Drafts {
		names = append(names, d.Name)
	}
	if diff := cmp.Diff([]string{"S-001", "S-003", "BLANK"}, names); diff != "" {
		t.Fatalf("drafts mismatch (-want +got):\n%s", diff)
	}
	if len(rec.Discarded) != 1 || rec.Discarded[0].Label != "ratio" {
		t.Fatalf("discarded = %#v", rec.Discarded)
	}

	// concentration is the qubit reading; zero stays zero, absent stays nil
	if c := rec.Drafts[1].Concentration; c == nil || *c != 0 {
		t.Fatalf("zero concentration lost: %v", deref(c))
	}
	blank := rec.Drafts[2]
	if blank.Concentration != nil || blank.Volume != nil || blank.Nanodrop != nil {
		t.Fatalf("special row has numerics: %+v", blank)
	}
	if blank.Kind != KindSpecial {
		t.Fatalf("kind = %s", blank.Kind)
	}
}

func TestReconcileAppliesDocumentDefaults(t *testing.T) {
	cfg := DefaultConfig()
	doc := ExtractDocumentFields(cfg, []string{
		"Type of Sample: Total RNA\nBuffer: Qiagen EB\nBuffer: TE\nOrganism: Mus musculus",
	})
	rec := Reconcile(cfg, []Candidate{NumericRow{Index: 1, Name: "M1", Qubit: ptr(5)}}, doc)

	d := rec.Drafts[0]
	if d.SampleType != constants.SampleTypeRNA {
		t.Fatalf("sample type = %s, want RNA", d.SampleType)
	}
	if d.Provenance.Sources[ScoreSampleType] != SourceDocument {
		t.Fatalf("sample type source = %s", d.Provenance.Sources[ScoreSampleType])
	}
	if d.Buffer != "Qiagen EB" {
		t.Fatalf("buffer = %q", d.Buffer)
	}
	if !d.Provenance.Ambiguous[ScoreBuffer] {
		t.Fatalf("two different buffers should be ambiguous")
	}
	if rec.Metadata[FieldOrganism] != "Mus musculus" {
		t.Fatalf("metadata = %v", rec.Metadata)
	}

	plain := Reconcile(cfg, []Candidate{NumericRow{Index: 1, Name: "M1"}}, DocumentFields{})
	if plain.Drafts[0].SampleType != constants.SampleTypeDNA || plain.Drafts[0].Provenance.Sources[ScoreSampleType] != SourceDefault {
		t.Fatalf("expected defaulted DNA, got %+v", plain.Drafts[0])
	}
}

func TestReconcileBatchAttributesOverrideDocument(t *testing.T) {
	cfg := DefaultConfig()
	doc := DocumentFields{Values: map[string]string{FieldBuffer: "TE", FieldSampleType: "DNA"}}
	row := NumericRow{Index: 1, Name: "R1", Qubit: ptr(50), Attrs: map[string]string{FieldBuffer: "water", FieldSampleType: "mRNA"}}

	d := Reconcile(cfg, []Candidate{row}, doc).Drafts[0]
	if d.Buffer != "water" || d.SampleType != constants.SampleTypeRNA {
		t.Fatalf("attrs not applied: buffer=%q type=%s", d.Buffer, d.SampleType)
	}
	if d.Provenance.Sources[ScoreConcentration] != SourceColumn {
		t.Fatalf("source = %s, want column", d.Provenance.Sources[ScoreConcentration])
	}
}

func TestReconcileFallbackSingleSample(t *testing.T) {
	cfg := DefaultConfig()
	doc := ExtractDocumentFields(cfg, []string{
		"Submitter Name: Ada Lovelace\nSample Name: Soil-7\nConcentration: 42.5 ng/µL\nVolume: 30 µL",
	})

	rec := Reconcile(cfg, nil, doc)
	if !rec.Fallback || len(rec.Drafts) != 1 {
		t.Fatalf("fallback=%v drafts=%d, want one fallback draft", rec.Fallback, len(rec.Drafts))
	}
	d := rec.Drafts[0]
	if d.Kind != KindFallback || d.Name != "Soil-7" {
		t.Fatalf("draft = %+v", d)
	}
	if d.Concentration == nil || *d.Concentration != 42.5 || d.Volume == nil || *d.Volume != 30 {
		t.Fatalf("numerics = %v / %v", deref(d.Concentration), deref(d.Volume))
	}
	if d.SourceIndex != nil {
		t.Fatalf("fallback draft should carry no printed index")
	}
}

func TestReconcileFallbackRejectsHeaderLikeName(t *testing.T) {
	cfg := DefaultConfig()
	doc := DocumentFields{Values: map[string]string{FieldSampleName: "Volume (µL)"}}
	rec := Reconcile(cfg, nil, doc)
	if len(rec.Drafts) != 0 || rec.Fallback {
		t.Fatalf("header-like fallback produced drafts: %+v", rec.Drafts)
	}
	if len(rec.Discarded) != 1 {
		t.Fatalf("discarded = %#v", rec.Discarded)
	}
}

func TestReconcileWarnsOnPrintedIndexGapsAndDuplicates(t *testing.T) {
	cands := []Candidate{
		NumericRow{Index: 1, Name: "A"},
		NumericRow{Index: 2, Name: "B"},
		NumericRow{Index: 2, Name: "C"},
		NumericRow{Index: 5, Name: "D"},
	}
	rec := Reconcile(DefaultConfig(), cands, DocumentFields{})
	want := []string{
		"printed row index 2 appears 2 times",
		"printed row indices skip 3, 4",
	}
	if diff := cmp.Diff(want, rec.Warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if len(rec.Drafts) != 4 {
		t.Fatalf("index problems must not drop rows, got %d drafts", len(rec.Drafts))
	}
}

func TestDocumentFieldsMergeNeverOverridesPatterns(t *testing.T) {
	doc := DocumentFields{Values: map[string]string{FieldLab: "Doe Lab"}}
	filled := doc.Merge(map[string]string{
		FieldLab:           "Other Lab",
		FieldOrganism:      "Homo sapiens",
		FieldSubmitterName: " ",
		"unexpected":       "x",
	}, []string{FieldLab, FieldOrganism, FieldSubmitterName})

	if diff := cmp.Diff([]string{FieldOrganism}, filled); diff != "" {
		t.Fatalf("filled mismatch (-want +got):\n%s", diff)
	}
	if doc.Values[FieldLab] != "Doe Lab" {
		t.Fatalf("pattern value overwritten: %q", doc.Values[FieldLab])
	}
	if !doc.FromLLM[FieldOrganism] || doc.FromLLM[FieldLab] {
		t.Fatalf("FromLLM = %v", doc.FromLLM)
	}
	if _, ok := doc.Values["unexpected"]; ok {
		t.Fatalf("unrequested key merged")
	}
}
