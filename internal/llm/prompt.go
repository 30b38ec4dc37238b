package llm

import (
	"strings"
)

// maxPromptChars bounds the document text sent to the model.
const maxPromptChars = 6000

var fieldHelp = map[string]string{
	"submitter_name":  "person who submitted the samples",
	"submitter_email": "submitter email address",
	"lab":             "laboratory or group name",
	"organism":        "source organism or species",
	"sample_type":     "nucleic acid type of the samples",
	"buffer":          "buffer the samples are suspended in",
	"sample_name":     "name of the single sample, only when there is no sample table",
}

// BuildSystemPrompt composes the system message with the allowed sample types and
// strict-but-practical formatting rules.
func BuildSystemPrompt(req ExtractRequest) string {
	var typeLine string
	if len(req.AllowedSampleTypes) > 0 {
		typeLine = "If you include 'sample_type' it MUST be exactly one of: " + strings.Join(req.AllowedSampleTypes, ", ") + ". "
	}
	parts := []string{
		"You read nanopore sequencing submission forms. Return ONLY JSON that matches the provided JSON Schema.",
		typeLine,
		"Copy values exactly as written in the form; do not guess or invent values.",
		"Never output null. If a field is not present, omit it.",
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// BuildUserPrompt lists the wanted fields and includes the (truncated) form text.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if f := strings.TrimSpace(req.FilenameHint); f != "" {
		b.WriteString("Filename: ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	if len(req.Missing) > 0 {
		b.WriteString("Fields needed:\n")
		for _, k := range req.Missing {
			b.WriteString("- ")
			b.WriteString(k)
			if h, ok := fieldHelp[k]; ok {
				b.WriteString(": ")
				b.WriteString(h)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\nForm text:\n")
	text := req.Text
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars]
	}
	b.WriteString(text)
	return b.String()
}
