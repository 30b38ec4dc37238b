package constants

import "strings"

type SampleType string

const (
	SampleTypeDNA     SampleType = "DNA"
	SampleTypeRNA     SampleType = "RNA"
	SampleTypeProtein SampleType = "Protein"
	SampleTypeOther   SampleType = "Other"
)

var allSampleTypes = []SampleType{SampleTypeDNA, SampleTypeRNA, SampleTypeProtein, SampleTypeOther}

// SampleTypesAsStrings is used for JSON-schema enums and validation.
func SampleTypesAsStrings() []string {
	out := make([]string, len(allSampleTypes))
	for i, t := range allSampleTypes {
		out[i] = string(t)
	}
	return out
}

// CanonicalizeSampleType maps free text from forms ("gDNA", "Total RNA", "HMW DNA")
// to a SampleType. The bool reports whether anything recognisable was found.
func CanonicalizeSampleType(input string) (SampleType, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return SampleTypeOther, false
	}

	synonyms := map[string]SampleType{
		"gdna":        SampleTypeDNA,
		"hmw dna":     SampleTypeDNA,
		"genomic dna": SampleTypeDNA,
		"plasmid":     SampleTypeDNA,
		"amplicon":    SampleTypeDNA,
		"pcr product": SampleTypeDNA,
		"cdna":        SampleTypeDNA,
		"total rna":   SampleTypeRNA,
		"mrna":        SampleTypeRNA,
		"direct rna":  SampleTypeRNA,
		"protein":     SampleTypeProtein,
		"other":       SampleTypeOther,
	}
	if t, ok := synonyms[s]; ok {
		return t, true
	}
	for _, t := range allSampleTypes {
		if s == strings.ToLower(string(t)) {
			return t, true
		}
	}
	switch {
	case strings.Contains(s, "rna"):
		return SampleTypeRNA, true
	case strings.Contains(s, "dna"):
		return SampleTypeDNA, true
	case strings.Contains(s, "protein"):
		return SampleTypeProtein, true
	}
	return SampleTypeOther, false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority defaults to normal for empty or unknown input.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, true
	case "normal", "":
		return PriorityNormal, true
	case "high":
		return PriorityHigh, true
	case "urgent", "rush":
		return PriorityUrgent, true
	}
	return PriorityNormal, false
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), b)
}
