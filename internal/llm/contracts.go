package llm

import "context"

// SubmissionFields is the normalized shape we want from the LLM.
type SubmissionFields struct {
	SubmitterName   string  `json:"submitter_name,omitempty"`
	SubmitterEmail  string  `json:"submitter_email,omitempty"`
	Lab             string  `json:"lab,omitempty"`
	Organism        string  `json:"organism,omitempty"`
	SampleType      string  `json:"sample_type,omitempty"` // one of AllowedSampleTypes when provided
	Buffer          string  `json:"buffer,omitempty"`
	SampleName      string  `json:"sample_name,omitempty"`
	ModelConfidence float32 `json:"confidence,omitempty"` // optional (0..1)
}

// AsMap returns the non-empty fields keyed by their JSON names.
func (f SubmissionFields) AsMap() map[string]string {
	out := map[string]string{}
	put := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	put("submitter_name", f.SubmitterName)
	put("submitter_email", f.SubmitterEmail)
	put("lab", f.Lab)
	put("organism", f.Organism)
	put("sample_type", f.SampleType)
	put("buffer", f.Buffer)
	put("sample_name", f.SampleName)
	return out
}

type ExtractRequest struct {
	Text               string
	FilenameHint       string
	Missing            []string // field keys the caller still needs
	AllowedSampleTypes []string
}

// FieldExtractor is the interface the enhancement step depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (SubmissionFields, []byte /*rawJSON*/, error)
}
