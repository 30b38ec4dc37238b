package server

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
)

type Exporter interface {
	ExportSubmissionsXLSX(ctx context.Context, ids []uuid.UUID) ([]byte, error)
}

func (s *TrackerServer) ExportSubmission(ctx context.Context, req *ExportSubmissionRequest) (*ExportSubmissionResponse, error) {
	if len(req.IDs) == 0 {
		return nil, common.InvalidArgumentError("ids are required")
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for i, raw := range req.IDs {
		id, err := parseID(fmt.Sprintf("ids[%d]", i), raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	xlsx, err := s.export.ExportSubmissionsXLSX(ctx, ids)
	if err != nil {
		return nil, s.fail(ctx, "ExportSubmission", err, "submissions", len(ids))
	}
	name := "submissions.xlsx"
	if len(ids) == 1 {
		name = "submission-" + ids[0].String() + ".xlsx"
	}
	return &ExportSubmissionResponse{Xlsx: xlsx, Filename: name}, nil
}
