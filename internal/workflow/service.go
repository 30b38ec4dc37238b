package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	"github.com/joseph-ayodele/nanopore-tracker/internal/entity"
	"github.com/joseph-ayodele/nanopore-tracker/internal/repository"
)

// maxAttempts bounds compare-and-set retries when another writer moves the sample first.
const maxAttempts = 3

type Service struct {
	samples repository.SampleRepository
	now     func() time.Time
	logger  *slog.Logger
}

func NewService(samples repository.SampleRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{samples: samples, now: func() time.Time { return time.Now().UTC() }, logger: logger}
}

// Transition moves a sample to target and records the step. The status check and
// the write are one compare-and-set, so concurrent callers cannot both win from
// the same state.
func (s *Service) Transition(ctx context.Context, sampleID uuid.UUID, target constants.SampleStatus, operator, note string) (*entity.ProcessingStep, error) {
	if _, ok := transitions[target]; !ok {
		return nil, common.NewValidationError("unknown sample status " + string(target))
	}
	if operator == "" {
		operator = common.OperatorFromContext(ctx)
	}

	for attempt := 1; ; attempt++ {
		sample, err := s.samples.Get(ctx, sampleID)
		if err != nil {
			return nil, err
		}
		from := sample.Status
		if !CanTransition(from, target) {
			s.logger.Info("workflow.transition.rejected",
				"sample_id", sampleID, "from", from, "to", target)
			return nil, &common.InvalidTransitionError{From: string(from), To: string(target)}
		}

		step := &entity.ProcessingStep{EnteredAt: s.now(), Operator: operator, Note: note}
		err = s.samples.Transition(ctx, sampleID, from, target, step)
		if err == nil {
			s.logger.Info("workflow.transition.ok",
				"sample_id", sampleID, "from", from, "to", target, "operator", operator)
			return step, nil
		}
		if !errors.Is(err, common.ErrConflict) || attempt >= maxAttempts {
			s.logger.Error("workflow.transition.failed", "sample_id", sampleID, "to", target, "error", err)
			return nil, err
		}
		s.logger.Debug("workflow.transition.retry", "sample_id", sampleID, "attempt", attempt)
	}
}

// History returns the sample's steps in the order they were entered.
func (s *Service) History(ctx context.Context, sampleID uuid.UUID) ([]*entity.ProcessingStep, error) {
	if _, err := s.samples.Get(ctx, sampleID); err != nil {
		return nil, err
	}
	return s.samples.History(ctx, sampleID)
}
