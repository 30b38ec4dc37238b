package extract

import (
	"sort"
	"strings"
)

// DocumentFields holds labeled values found in the full, unstitched text.
type DocumentFields struct {
	Values map[string]string
	// Ambiguous lists every distinct value for keys matched more than once.
	Ambiguous map[string][]string
	// FromLLM marks keys filled by the language model rather than a pattern.
	FromLLM map[string]bool
}

func (d DocumentFields) Get(key string) string { return d.Values[key] }

func (d DocumentFields) IsAmbiguous(key string) bool { return len(d.Ambiguous[key]) > 1 }

// Missing returns the keys among want that have no value, in the order given.
func (d DocumentFields) Missing(want []string) []string {
	var out []string
	for _, k := range want {
		if strings.TrimSpace(d.Values[k]) == "" {
			out = append(out, k)
		}
	}
	return out
}

// ExtractDocumentFields applies every labeled-field pattern to the joined pages. The
// first match of each pattern is kept; differing later matches mark the key ambiguous.
func ExtractDocumentFields(cfg Config, pages []string) DocumentFields {
	text := strings.Join(pages, "\n")
	out := DocumentFields{
		Values:    map[string]string{},
		Ambiguous: map[string][]string{},
		FromLLM:   map[string]bool{},
	}
	for _, fp := range cfg.DocumentFields {
		var distinct []string
		seen := map[string]struct{}{}
		for _, m := range fp.Pattern.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			v := collapseSpaces(m[1])
			if v == "" {
				continue
			}
			k := strings.ToLower(v)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			distinct = append(distinct, v)
		}
		if len(distinct) == 0 {
			continue
		}
		out.Values[fp.Key] = distinct[0]
		if len(distinct) > 1 {
			out.Ambiguous[fp.Key] = distinct
		}
	}
	return out
}

// Merge fills keys that are still empty from extra and marks them as model-sourced.
// Pattern values are never overwritten. It returns the keys it filled, sorted.
func (d *DocumentFields) Merge(extra map[string]string, allowed []string) []string {
	ok := make(map[string]struct{}, len(allowed))
	for _, k := range allowed {
		ok[k] = struct{}{}
	}
	var filled []string
	for k, v := range extra {
		v = collapseSpaces(v)
		if v == "" {
			continue
		}
		if _, allowedKey := ok[k]; !allowedKey {
			continue
		}
		if strings.TrimSpace(d.Values[k]) != "" {
			continue
		}
		if d.Values == nil {
			d.Values = map[string]string{}
		}
		if d.FromLLM == nil {
			d.FromLLM = map[string]bool{}
		}
		d.Values[k] = v
		d.FromLLM[k] = true
		filled = append(filled, k)
	}
	sort.Strings(filled)
	return filled
}
