package extract

import (
	"strings"
	"unicode"
)

// Denylist recognises table header vocabulary that leaks into row matches when a
// header is repeated at a page boundary.
type Denylist struct {
	// Exact labels that are header cells on their own ("#", "uL").
	Exact []string
	// Tokens matched against whole words of the label.
	Tokens []string
	// Substrings matched anywhere in the label.
	Substrings []string
	// Pairs of words that mark a header only when both appear.
	Pairs [][2]string
	// NearMiss words make a kept label suspicious without discarding it.
	NearMiss []string
}

func DefaultDenylist() Denylist {
	return Denylist{
		Exact:  []string{"#", "no", "no.", "index", "id", "name", "sample", "ul", "µl", "μl", "ng/ul", "ng/µl"},
		Tokens: []string{"ratio", "ratios", "qubit", "nanodrop", "volume", "vol", "conc", "concentration", "a260", "a280", "a230"},
		Substrings: []string{
			"ng/µl", "ng/μl", "ng/ul", "(µl)", "(μl)", "(ul)",
			"260/280", "260/230", "a260",
		},
		Pairs:    [][2]string{{"sample", "name"}},
		NearMiss: []string{"sample", "name", "total", "page", "ratio", "qubit", "nanodrop", "volume", "conc"},
	}
}

func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// IsHeader reports whether text looks like a header cell, and which rule hit.
func (d Denylist) IsHeader(text string) (bool, string) {
	lower := strings.ToLower(collapseSpaces(text))
	if lower == "" {
		return false, ""
	}
	for _, e := range d.Exact {
		if lower == e {
			return true, "header label " + e
		}
	}
	toks := tokens(lower)
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	for _, t := range d.Tokens {
		if _, ok := set[t]; ok {
			return true, "header word " + t
		}
	}
	for _, sub := range d.Substrings {
		if strings.Contains(lower, sub) {
			return true, "header fragment " + sub
		}
	}
	for _, p := range d.Pairs {
		_, a := set[p[0]]
		_, b := set[p[1]]
		if a && b {
			return true, "header words " + p[0] + "+" + p[1]
		}
	}
	return false, ""
}

// NearMissOf returns the first near-miss word found inside text, either as a whole
// word or embedded in a longer one. Callers only ask after IsHeader said no.
func (d Denylist) NearMissOf(text string) string {
	toks := tokens(text)
	for _, w := range d.NearMiss {
		for _, t := range toks {
			if t == w || (len(w) >= 4 && strings.Contains(t, w)) {
				return w
			}
		}
	}
	return ""
}
