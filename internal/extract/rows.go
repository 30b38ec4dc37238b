package extract

import (
	"strconv"
	"strings"
)

// ExtractRows turns region lines into candidates in document order. The numeric
// pattern is tried before the special-entry pattern. Lines matching neither are
// ignored.
func ExtractRows(cfg Config, region Region) []Candidate {
	var out []Candidate
	for _, line := range region.Lines {
		if c, ok := matchLine(cfg, line); ok {
			out = append(out, c)
		}
	}
	return out
}

func matchLine(cfg Config, line RegionLine) (Candidate, bool) {
	text := strings.TrimRight(line.Text, " \t\r")
	if cfg.NumericRow != nil {
		if m := cfg.NumericRow.FindStringSubmatch(text); m != nil {
			idx, _ := strconv.Atoi(m[1])
			row := NumericRow{
				Index:    idx,
				Name:     collapseSpaces(m[2]),
				Volume:   parseReading(m[3]),
				Qubit:    parseReading(m[4]),
				Nanodrop: parseReading(m[5]),
				A260280:  parseReading(m[6]),
				Page:     line.Page,
				Line:     text,
			}
			if len(m) > 7 {
				row.A260230 = parseReading(m[7])
			}
			row = resolveShift(cfg, row, m)
			// a numeric row whose label is a control keeps the canonical spelling
			if canon, ok := canonicalSpecial(cfg, row.Name); ok {
				row.Name = canon
			}
			return row, true
		}
	}
	if cfg.SpecialRow != nil {
		if m := cfg.SpecialRow.FindStringSubmatch(text); m != nil {
			idx, _ := strconv.Atoi(m[1])
			name := collapseSpaces(m[2])
			if canon, ok := canonicalSpecial(cfg, name); ok {
				name = canon
			}
			return SpecialRow{Index: idx, Name: name, Page: line.Page, Line: text}, true
		}
	}
	return nil, false
}

// resolveShift handles labels ending in a number. When the optional A260/230
// column is absent, the pattern can also read the label's last token as the
// volume and shift every reading one column right. Both readings are built and
// the one with fewer implausible values wins. The name is marked ambiguous when
// the shifted reading is rejected in favour of the longer label, or when the two
// are equally plausible.
func resolveShift(cfg Config, row NumericRow, m []string) NumericRow {
	if len(m) < 8 || m[7] == "" || parseReading(m[3]) == nil {
		return row
	}
	alt := row
	alt.Name = collapseSpaces(m[2] + " " + m[3])
	alt.Volume, alt.Qubit, alt.Nanodrop, alt.A260280 = row.Qubit, row.Nanodrop, row.A260280, row.A260230
	alt.A260230 = nil

	rowBad, rowOK := plausibility(cfg, row)
	altBad, altOK := plausibility(cfg, alt)
	switch {
	case altBad < rowBad, altBad == rowBad && altOK > rowOK:
		alt.Ambiguous = true
		return alt
	case altBad == rowBad && altOK == rowOK:
		row.Ambiguous = true
	}
	return row
}

// plausibility counts readings outside cfg.Ranges (plus a qubit/nanodrop
// disagreement) and readings inside them.
func plausibility(cfg Config, row NumericRow) (bad, ok int) {
	for _, r := range []struct {
		field string
		v     *float64
	}{
		{ScoreVolume, row.Volume},
		{ScoreConcentration, row.Qubit},
		{ScoreNanodrop, row.Nanodrop},
		{ScoreA260280, row.A260280},
		{ScoreA260230, row.A260230},
	} {
		rng, has := cfg.Ranges[r.field]
		if r.v == nil || !has {
			continue
		}
		if rng.Contains(*r.v) {
			ok++
		} else {
			bad++
		}
	}
	if row.Qubit != nil && row.Nanodrop != nil && disagree(*row.Qubit, *row.Nanodrop, cfg.DisagreementRatio) {
		bad++
	}
	return bad, ok
}

func canonicalSpecial(cfg Config, label string) (string, bool) {
	for _, sl := range cfg.SpecialLabels {
		if sl.Pattern.MatchString(label) {
			return sl.Canonical, true
		}
	}
	return "", false
}

// parseReading returns nil for blanks and placeholders such as "-" or "N/A".
// Zero is a real reading and is kept.
func parseReading(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func labelKey(label string) string {
	return strings.ToLower(collapseSpaces(label))
}

// Dedup collapses candidates whose labels are identical, ignoring case and runs of
// whitespace. The first occurrence wins and order is preserved. Applying Dedup to
// its own output changes nothing.
func Dedup(cands []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		k := labelKey(c.Label())
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}

// CanonicalSpecial reports whether label names a control or blank and returns its
// canonical spelling.
func (c Config) CanonicalSpecial(label string) (string, bool) {
	return canonicalSpecial(c, collapseSpaces(label))
}
