package llm

// BuildSubmissionJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// We pass this to the model as a structured output constraint and also use it locally to validate.
func BuildSubmissionJSONSchema(allowedSampleTypes []string) map[string]any {
	text := func() map[string]any { return map[string]any{"type": "string", "minLength": 1} }
	props := map[string]any{
		"submitter_name":  text(),
		"submitter_email": map[string]any{"type": "string", "pattern": `^[^\s@]+@[^\s@]+\.[^\s@]+$`},
		"lab":             text(),
		"organism":        text(),
		"sample_type":     text(),
		"buffer":          text(),
		"sample_name":     text(),
		"confidence":      map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
	}
	if len(allowedSampleTypes) > 0 {
		props["sample_type"] = map[string]any{
			"type": "string",
			"enum": allowedSampleTypes,
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}
