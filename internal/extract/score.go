package extract

import (
	"fmt"
	"math"
	"strconv"
)

type Grade string

const (
	GradeExcellent  Grade = "excellent"
	GradeGood       Grade = "good"
	GradeAcceptable Grade = "acceptable"
	GradePoor       Grade = "poor"
	GradeFailed     Grade = "failed"
)

// GradeFor buckets an aggregate score.
func GradeFor(score float64) Grade {
	switch {
	case score >= 90:
		return GradeExcellent
	case score >= 75:
		return GradeGood
	case score >= 60:
		return GradeAcceptable
	case score >= 40:
		return GradePoor
	default:
		return GradeFailed
	}
}

// Scored is a draft with its confidence assessment.
type Scored struct {
	Draft
	FieldScores   map[string]float64
	Score         float64
	Grade         Grade
	Issues        []string
	LowConfidence bool
}

// Score rates every present field of d. Each field starts at 100 and loses
// cfg.Decrement per warning; the sample score is the mean over present fields,
// clamped to [0, 100]. The result depends only on cfg and d.
func Score(cfg Config, d Draft) Scored {
	dec := cfg.Decrement
	if dec <= 0 {
		dec = 30
	}
	present := presentFields(d)
	scores := make(map[string]float64, len(present))
	for f := range present {
		scores[f] = 100
	}
	var issues []string
	warn := func(field, msg string) {
		if _, ok := scores[field]; !ok {
			return
		}
		scores[field] -= dec
		issues = append(issues, msg)
	}

	for _, f := range scoredFields {
		v, ok := present[f]
		if !ok {
			continue
		}
		switch d.Provenance.Sources[f] {
		case SourceDefault:
			warn(f, fmt.Sprintf("%s defaulted to %s", f, v))
		case SourceLLM:
			warn(f, fmt.Sprintf("%s supplied by language model", f))
		}
		if d.Provenance.Ambiguous[f] {
			warn(f, fmt.Sprintf("%s has conflicting values in document", f))
		}
		if f == ScoreName && d.Provenance.NearMiss != "" {
			warn(f, fmt.Sprintf("name %q resembles table header word %q", d.Name, d.Provenance.NearMiss))
		}
		if r, ok := cfg.Ranges[f]; ok {
			if x := numericField(d, f); x != nil && !r.Contains(*x) {
				warn(f, fmt.Sprintf("%s %s outside expected range %s-%s", f, fmtNum(*x), fmtNum(r.Min), fmtNum(r.Max)))
			}
		}
		switch f {
		case ScoreA260280:
			if d.Kind == KindNumeric && d.A260230 == nil {
				warn(f, "a260_230 missing")
			}
		case ScoreConcentration:
			if d.Nanodrop != nil && d.Qubit != nil && disagree(*d.Qubit, *d.Nanodrop, cfg.DisagreementRatio) {
				warn(f, fmt.Sprintf("qubit %s and nanodrop %s disagree", fmtNum(*d.Qubit), fmtNum(*d.Nanodrop)))
			}
		}
	}

	total := 0.0
	for f, s := range scores {
		if s < 0 {
			s = 0
			scores[f] = 0
		}
		total += s
	}
	agg := 0.0
	if len(scores) > 0 {
		agg = total / float64(len(scores))
	}
	agg = math.Round(math.Max(0, math.Min(100, agg))*100) / 100

	return Scored{
		Draft:         d,
		FieldScores:   scores,
		Score:         agg,
		Grade:         GradeFor(agg),
		Issues:        issues,
		LowConfidence: agg < cfg.LowConfidenceThreshold,
	}
}

// presentFields maps each present scored field to a printable value.
func presentFields(d Draft) map[string]string {
	out := map[string]string{}
	if d.Name != "" {
		out[ScoreName] = d.Name
	}
	if d.SampleType != "" {
		out[ScoreSampleType] = string(d.SampleType)
	}
	if d.Buffer != "" {
		out[ScoreBuffer] = d.Buffer
	}
	for _, f := range []string{ScoreConcentration, ScoreVolume, ScoreNanodrop, ScoreA260280, ScoreA260230} {
		if x := numericField(d, f); x != nil {
			out[f] = fmtNum(*x)
		}
	}
	return out
}

func numericField(d Draft, f string) *float64 {
	switch f {
	case ScoreConcentration:
		return d.Concentration
	case ScoreVolume:
		return d.Volume
	case ScoreNanodrop:
		return d.Nanodrop
	case ScoreA260280:
		return d.A260280
	case ScoreA260230:
		return d.A260230
	}
	return nil
}

func disagree(a, b, ratio float64) bool {
	if ratio <= 1 {
		ratio = 2
	}
	lo, hi := math.Min(a, b), math.Max(a, b)
	if hi == 0 {
		return false
	}
	if lo == 0 {
		return true
	}
	return hi/lo > ratio
}

func fmtNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
