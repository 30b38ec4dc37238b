package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
)

func cleanDraft() Draft {
	return Draft{
		Kind:          KindNumeric,
		Name:          "S-001",
		SampleType:    constants.SampleTypeDNA,
		Concentration: ptr(40),
		Qubit:         ptr(40),
		Nanodrop:      ptr(52),
		Volume:        ptr(25),
		A260280:       ptr(1.85),
		A260230:       ptr(2.1),
		Provenance: Provenance{
			Sources: map[string]FieldSource{
				ScoreName: SourceTable, ScoreSampleType: SourceDocument, ScoreConcentration: SourceTable,
				ScoreVolume: SourceTable, ScoreNanodrop: SourceTable, ScoreA260280: SourceTable, ScoreA260230: SourceTable,
			},
			Ambiguous: map[string]bool{},
		},
	}
}

func TestScoreCleanRowIsExcellent(t *testing.T) {
	s := Score(DefaultConfig(), cleanDraft())
	if s.Score != 100 || s.Grade != GradeExcellent {
		t.Fatalf("score = %v grade = %s, want 100 excellent (issues %v)", s.Score, s.Grade, s.Issues)
	}
	if len(s.Issues) != 0 || s.LowConfidence {
		t.Fatalf("unexpected issues %v low=%v", s.Issues, s.LowConfidence)
	}
	if len(s.FieldScores) != 7 {
		t.Fatalf("field scores = %v", s.FieldScores)
	}
}

func TestScoreWarnings(t *testing.T) {
	d := cleanDraft()
	d.Volume = ptr(1500)
	d.A260230 = nil
	d.Nanodrop = ptr(200)
	d.Provenance.Sources[ScoreSampleType] = SourceDefault

	s := Score(DefaultConfig(), d)
	want := map[string]float64{
		ScoreName:          100,
		ScoreSampleType:    70,
		ScoreConcentration: 70,
		ScoreVolume:        70,
		ScoreNanodrop:      100,
		ScoreA260280:       70,
	}
	if diff := cmp.Diff(want, s.FieldScores); diff != "" {
		t.Fatalf("field scores mismatch (-want +got):\n%s", diff)
	}
	if s.Score != 80 || s.Grade != GradeGood {
		t.Fatalf("score = %v grade = %s, want 80 good", s.Score, s.Grade)
	}
	wantIssues := []string{
		"sample_type defaulted to DNA",
		"qubit 40 and nanodrop 200 disagree",
		"volume 1500 outside expected range 0.5-1000",
		"a260_230 missing",
	}
	if diff := cmp.Diff(wantIssues, s.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreClampsAtZero(t *testing.T) {
	d := cleanDraft()
	d.Concentration, d.Qubit, d.Nanodrop, d.Volume, d.A260280, d.A260230 = nil, nil, nil, nil, nil, nil
	d.Kind = KindFallback
	d.Provenance.Sources[ScoreName] = SourceLLM
	d.Provenance.Ambiguous[ScoreName] = true
	d.Provenance.NearMiss = "sample"
	d.Name = "Sample X"

	cfg := DefaultConfig()
	cfg.Decrement = 60
	s := Score(cfg, d)
	if s.FieldScores[ScoreName] != 0 {
		t.Fatalf("name score = %v, want clamped 0", s.FieldScores[ScoreName])
	}
	if s.Score != 50 {
		t.Fatalf("score = %v, want 50", s.Score)
	}
	if !s.LowConfidence || s.Grade != GradePoor {
		t.Fatalf("low=%v grade=%s", s.LowConfidence, s.Grade)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	d := cleanDraft()
	d.Volume = ptr(0)
	d.Provenance.NearMiss = "sample"
	first := Score(cfg, d)
	for i := 0; i < 50; i++ {
		again := Score(cfg, d)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestGradeBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Grade
	}{
		{100, GradeExcellent}, {90, GradeExcellent}, {89.99, GradeGood}, {75, GradeGood},
		{74.9, GradeAcceptable}, {60, GradeAcceptable}, {59, GradePoor}, {40, GradePoor},
		{39.5, GradeFailed}, {0, GradeFailed},
	}
	for _, tt := range tests {
		if got := GradeFor(tt.score); got != tt.want {
			t.Errorf("GradeFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
