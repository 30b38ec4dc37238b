package server

import (
	"github.com/joseph-ayodele/nanopore-tracker/internal/entity"
	"github.com/joseph-ayodele/nanopore-tracker/internal/ingest"
)

// Messages of nanopore.tracker.v1.TrackerService. They travel as JSON.

type IngestRequest struct {
	Filename string   `json:"filename"`
	Pages    []string `json:"pages"`
	Priority string   `json:"priority,omitempty"`
}

type IngestFileRequest struct {
	Path     string `json:"path"`
	Priority string `json:"priority,omitempty"`
}

type DiscardedRow struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

type IngestResponse struct {
	Submission    *entity.Submission `json:"submission"`
	Discarded     []DiscardedRow     `json:"discarded,omitempty"`
	Enhanced      []string           `json:"enhanced,omitempty"`
	Fallback      bool               `json:"fallback"`
	LowConfidence int                `json:"low_confidence"`
}

type IngestDirectoryRequest struct {
	RootPath    string   `json:"root_path"`
	IncludeExts []string `json:"include_exts,omitempty"`
	SkipHidden  *bool    `json:"skip_hidden,omitempty"` // default true
	Priority    string   `json:"priority,omitempty"`
	Workers     int      `json:"workers,omitempty"`
}

type IngestDirectoryResponse struct {
	Scanned   uint32              `json:"scanned"`
	Matched   uint32              `json:"matched"`
	Succeeded uint32              `json:"succeeded"`
	Failed    uint32              `json:"failed"`
	Results   []ingest.FileResult `json:"results"`
}

type GetSubmissionRequest struct {
	ID string `json:"id"`
}

type GetSubmissionResponse struct {
	Submission *entity.Submission `json:"submission"`
}

type ListSubmissionsRequest struct {
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

type ListSubmissionsResponse struct {
	Submissions []*entity.Submission `json:"submissions"`
	Total       int                  `json:"total"`
}

type DeleteSubmissionRequest struct {
	ID string `json:"id"`
}

type DeleteSubmissionResponse struct{}

type TransitionSampleRequest struct {
	SampleID string `json:"sample_id"`
	Target   string `json:"target"`
	Operator string `json:"operator,omitempty"`
	Note     string `json:"note,omitempty"`
}

type TransitionSampleResponse struct {
	Step *entity.ProcessingStep `json:"step"`
	Next []string               `json:"next"` // states reachable from the new one
}

type SampleHistoryRequest struct {
	SampleID string `json:"sample_id"`
}

type SampleHistoryResponse struct {
	Steps []*entity.ProcessingStep `json:"steps"`
}

type ExportSubmissionRequest struct {
	IDs []string `json:"ids"`
}

type ExportSubmissionResponse struct {
	Xlsx     []byte `json:"xlsx"`
	Filename string `json:"filename"`
}
