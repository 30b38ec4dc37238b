package server

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	"github.com/joseph-ayodele/nanopore-tracker/internal/entity"
	"github.com/joseph-ayodele/nanopore-tracker/internal/ingest"
	"github.com/joseph-ayodele/nanopore-tracker/internal/repository"
)

// Ingestor is the part of ingest.Service the RPC surface uses.
type Ingestor interface {
	Ingest(ctx context.Context, doc ingest.Document) (*ingest.SubmissionResult, error)
	IngestFile(ctx context.Context, path string, priority constants.Priority) (*ingest.SubmissionResult, error)
	IngestDirectory(ctx context.Context, req ingest.DirectoryRequest) ([]ingest.FileResult, ingest.DirStats, error)
	GetSubmissionWithSamples(ctx context.Context, id uuid.UUID) (*entity.Submission, error)
	ListSubmissions(ctx context.Context, f repository.ListFilter) ([]*entity.Submission, int, error)
	DeleteSubmission(ctx context.Context, id uuid.UUID) error
}

func (s *TrackerServer) Ingest(ctx context.Context, req *IngestRequest) (*IngestResponse, error) {
	name := strings.TrimSpace(req.Filename)
	if name == "" {
		return nil, common.InvalidArgumentError("filename is required")
	}
	res, err := s.ingest.Ingest(ctx, ingest.Document{
		Filename: name,
		Pages:    req.Pages,
		Priority: constants.Priority(req.Priority),
	})
	if err != nil {
		return nil, s.fail(ctx, "Ingest", err, "filename", name)
	}
	return toIngestResponse(res), nil
}

func (s *TrackerServer) IngestFile(ctx context.Context, req *IngestFileRequest) (*IngestResponse, error) {
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return nil, common.InvalidArgumentError("path is required")
	}
	s.logger.Info("server.ingest_file.start", "path", path)
	res, err := s.ingest.IngestFile(ctx, path, constants.Priority(req.Priority))
	if err != nil {
		return nil, s.fail(ctx, "IngestFile", err, "path", path)
	}
	return toIngestResponse(res), nil
}

func (s *TrackerServer) IngestDirectory(ctx context.Context, req *IngestDirectoryRequest) (*IngestDirectoryResponse, error) {
	root := strings.TrimSpace(req.RootPath)
	if root == "" {
		return nil, common.InvalidArgumentError("root_path is required")
	}
	skipHidden := true
	if req.SkipHidden != nil {
		skipHidden = *req.SkipHidden
	}
	results, stats, err := s.ingest.IngestDirectory(ctx, ingest.DirectoryRequest{
		Root:        root,
		IncludeExts: req.IncludeExts,
		SkipHidden:  skipHidden,
		Priority:    constants.Priority(req.Priority),
		Workers:     req.Workers,
	})
	if err != nil {
		return nil, s.fail(ctx, "IngestDirectory", err, "root", root)
	}
	return &IngestDirectoryResponse{
		Scanned:   stats.Scanned,
		Matched:   stats.Matched,
		Succeeded: stats.Succeeded,
		Failed:    stats.Failed,
		Results:   results,
	}, nil
}

func (s *TrackerServer) GetSubmission(ctx context.Context, req *GetSubmissionRequest) (*GetSubmissionResponse, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}
	sub, err := s.ingest.GetSubmissionWithSamples(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "GetSubmission", err, "submission_id", id)
	}
	return &GetSubmissionResponse{Submission: sub}, nil
}

func (s *TrackerServer) ListSubmissions(ctx context.Context, req *ListSubmissionsRequest) (*ListSubmissionsResponse, error) {
	subs, total, err := s.ingest.ListSubmissions(ctx, repository.ListFilter{
		Status: constants.SubmissionStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return nil, s.fail(ctx, "ListSubmissions", err)
	}
	if subs == nil {
		subs = []*entity.Submission{}
	}
	return &ListSubmissionsResponse{Submissions: subs, Total: total}, nil
}

func (s *TrackerServer) DeleteSubmission(ctx context.Context, req *DeleteSubmissionRequest) (*DeleteSubmissionResponse, error) {
	id, err := parseID("id", req.ID)
	if err != nil {
		return nil, err
	}
	if err := s.ingest.DeleteSubmission(ctx, id); err != nil {
		return nil, s.fail(ctx, "DeleteSubmission", err, "submission_id", id)
	}
	return &DeleteSubmissionResponse{}, nil
}

func toIngestResponse(res *ingest.SubmissionResult) *IngestResponse {
	out := &IngestResponse{
		Submission:    res.Submission,
		Enhanced:      res.Enhanced,
		Fallback:      res.Fallback,
		LowConfidence: res.LowConfidence,
	}
	for _, d := range res.Discarded {
		out.Discarded = append(out.Discarded, DiscardedRow{Label: d.Label, Reason: d.Reason})
	}
	return out
}
