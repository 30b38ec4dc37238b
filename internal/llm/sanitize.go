package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"sort"
	"strings"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
)

var reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var allowedKeys = map[string]struct{}{
	"submitter_name": {}, "submitter_email": {}, "lab": {}, "organism": {},
	"sample_type": {}, "buffer": {}, "sample_name": {}, "confidence": {},
}

// NormalizeAndSanitizeJSON
// - Renames known synonyms (email -> submitter_email, species -> organism)
// - Drops null/empty values and malformed emails
// - Canonicalizes sample_type to the DNA/RNA/Protein/Other enum
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			// don't overwrite existing value if already present
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms to our schema
	renamed("email", "submitter_email")
	renamed("contact", "submitter_name")
	renamed("submitter", "submitter_name")
	renamed("laboratory", "lab")
	renamed("species", "organism")
	renamed("type", "sample_type")
	renamed("type_of_sample", "sample_type")

	// 2) remove unknown keys
	for k := range maps.Clone(m) {
		if _, ok := allowedKeys[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	// 3) drop null / "" and non-strings; trim the rest
	for k, v := range maps.Clone(m) {
		if k == "confidence" {
			if _, ok := v.(float64); !ok {
				delete(m, k)
				dropped = append(dropped, k+"(type)")
			}
			continue
		}
		switch t := v.(type) {
		case string:
			s := strings.Join(strings.Fields(t), " ")
			if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "unknown") {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		default:
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}

	// 4) field-specific normalization
	if v, ok := m["submitter_email"].(string); ok && !reEmail.MatchString(v) {
		delete(m, "submitter_email")
		dropped = append(dropped, "submitter_email(format)")
	}
	if v, ok := m["sample_type"].(string); ok {
		if st, known := constants.CanonicalizeSampleType(v); known {
			m["sample_type"] = string(st)
		} else {
			delete(m, "sample_type")
			dropped = append(dropped, "sample_type(unknown)")
		}
	}
	if v, ok := m["confidence"].(float64); ok && (v < 0 || v > 1) {
		delete(m, "confidence")
		dropped = append(dropped, "confidence(range)")
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	sort.Strings(dropped)
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}
