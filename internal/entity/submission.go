package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
)

// Submission represents one uploaded document and its extraction result.
type Submission struct {
	ID               uuid.UUID                  `json:"id"`
	SubmissionNumber string                     `json:"submission_number"`
	SourceFilename   string                     `json:"source_filename"`
	SubmitterName    string                     `json:"submitter_name,omitempty"`
	SubmitterEmail   string                     `json:"submitter_email,omitempty"`
	SubmitterLab     string                     `json:"submitter_lab,omitempty"`
	Status           constants.SubmissionStatus `json:"status"`
	SampleCount      int                        `json:"sample_count"`
	Metadata         map[string]string          `json:"metadata,omitempty"`
	Warnings         []string                   `json:"warnings,omitempty"`
	ErrorKind        string                     `json:"error_kind,omitempty"`
	ErrorMessage     string                     `json:"error_message,omitempty"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`

	Samples []*Sample `json:"samples,omitempty"`
}
