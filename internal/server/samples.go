package server

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	"github.com/joseph-ayodele/nanopore-tracker/internal/entity"
	"github.com/joseph-ayodele/nanopore-tracker/internal/workflow"
)

type Workflow interface {
	Transition(ctx context.Context, sampleID uuid.UUID, target constants.SampleStatus, operator, note string) (*entity.ProcessingStep, error)
	History(ctx context.Context, sampleID uuid.UUID) ([]*entity.ProcessingStep, error)
}

func (s *TrackerServer) TransitionSample(ctx context.Context, req *TransitionSampleRequest) (*TransitionSampleResponse, error) {
	id, err := parseID("sample_id", req.SampleID)
	if err != nil {
		return nil, err
	}
	target, ok := constants.ParseSampleStatus(req.Target)
	if !ok {
		return nil, common.InvalidArgumentErrorf("unknown target status %q", req.Target)
	}
	step, err := s.workflow.Transition(ctx, id, target, req.Operator, req.Note)
	if err != nil {
		return nil, s.fail(ctx, "TransitionSample", err, "sample_id", id, "target", target)
	}
	next := workflow.Allowed(step.Stage)
	out := &TransitionSampleResponse{Step: step, Next: make([]string, len(next))}
	for i, st := range next {
		out.Next[i] = string(st)
	}
	return out, nil
}

func (s *TrackerServer) SampleHistory(ctx context.Context, req *SampleHistoryRequest) (*SampleHistoryResponse, error) {
	id, err := parseID("sample_id", req.SampleID)
	if err != nil {
		return nil, err
	}
	steps, err := s.workflow.History(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "SampleHistory", err, "sample_id", id)
	}
	return &SampleHistoryResponse{Steps: steps}, nil
}
