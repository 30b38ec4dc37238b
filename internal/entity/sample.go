package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
)

// Sample is one physical sample owned by a Submission.
type Sample struct {
	ID              uuid.UUID              `json:"id"`
	SubmissionID    uuid.UUID              `json:"submission_id"`
	SampleNumber    int                    `json:"sample_number"`
	SourceIndex     *int                   `json:"source_index,omitempty"` // row index as printed in the document
	Name            string                 `json:"name"`
	SampleType      constants.SampleType   `json:"sample_type"`
	Concentration   *float64               `json:"concentration"` // ng/µL; null for controls and blanks
	Volume          *float64               `json:"volume"`        // µL
	Qubit           *float64               `json:"qubit,omitempty"`
	Nanodrop        *float64               `json:"nanodrop,omitempty"`
	A260280         *float64               `json:"a260_280,omitempty"`
	A260230         *float64               `json:"a260_230,omitempty"`
	Buffer          string                 `json:"buffer,omitempty"`
	FieldConfidence map[string]float64     `json:"field_confidence"`
	ConfidenceScore float64                `json:"confidence_score"`
	Grade           string                 `json:"grade"`
	Issues          []string               `json:"issues,omitempty"`
	LowConfidence   bool                   `json:"low_confidence"`
	Status          constants.SampleStatus `json:"status"`
	Priority        constants.Priority     `json:"priority"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ProcessingStep is an append-only record of one workflow stage a sample entered.
type ProcessingStep struct {
	ID        uuid.UUID              `json:"id"`
	SampleID  uuid.UUID              `json:"sample_id"`
	Stage     constants.SampleStatus `json:"stage"`
	FromStage constants.SampleStatus `json:"from_stage,omitempty"`
	EnteredAt time.Time              `json:"entered_at"`
	Operator  string                 `json:"operator,omitempty"`
	Note      string                 `json:"note,omitempty"`
}
