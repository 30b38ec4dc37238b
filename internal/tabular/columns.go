package tabular

import (
	"strings"

	"github.com/joseph-ayodele/nanopore-tracker/internal/extract"
)

// Column roles a batch sheet header can map to.
const (
	colIndex          = "index"
	colName           = "name"
	colVolume         = "volume"
	colQubit          = "qubit"
	colNanodrop       = "nanodrop"
	colA260280        = "a260_280"
	colA260230        = "a260_230"
	colBuffer         = extract.FieldBuffer
	colSampleType     = extract.FieldSampleType
	colSubmitterName  = extract.FieldSubmitterName
	colSubmitterEmail = extract.FieldSubmitterEmail
	colLab            = extract.FieldLab
	colOrganism       = extract.FieldOrganism
)

type columnRule struct {
	role     string
	contains []string
}

// Order matters: "sample type" must win over "sample", "submitter name" over "name".
var columnRules = []columnRule{
	{colSubmitterEmail, []string{"email"}},
	{colSubmitterName, []string{"submitter", "contact", "requester"}},
	{colA260230, []string{"260/230", "260 230"}},
	{colA260280, []string{"260/280", "260 280"}},
	{colNanodrop, []string{"nanodrop", "nano drop"}},
	{colQubit, []string{"qubit", "conc"}},
	{colVolume, []string{"vol"}},
	{colBuffer, []string{"buffer", "solution"}},
	{colOrganism, []string{"organism", "species"}},
	{colLab, []string{"lab"}},
	{colSampleType, []string{"type"}},
	{colName, []string{"sample", "name", "id"}},
}

var indexHeaders = map[string]struct{}{"#": {}, "no": {}, "no.": {}, "index": {}, "row": {}, "idx": {}}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer("_", " ", "-", " ", "\u00a0", " ").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}

// mapColumns assigns each role to the first header that matches it.
func mapColumns(header []string) map[string]int {
	out := map[string]int{}
	for i, raw := range header {
		h := normalizeHeader(raw)
		if h == "" {
			continue
		}
		if _, ok := indexHeaders[h]; ok {
			if _, taken := out[colIndex]; !taken {
				out[colIndex] = i
			}
			continue
		}
		for _, r := range columnRules {
			if !containsAny(h, r.contains) {
				continue
			}
			if _, taken := out[r.role]; !taken {
				out[r.role] = i
			}
			break
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
