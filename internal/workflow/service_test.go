package workflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	"github.com/joseph-ayodele/nanopore-tracker/internal/entity"
	"github.com/joseph-ayodele/nanopore-tracker/internal/repository"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newSample(t *testing.T) (*repository.DB, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "wf.db")}, quiet())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	subs := repository.NewSubmissionRepository(db, quiet())
	s := &entity.Submission{SubmissionNumber: "SUB-20260101-ABCDEF", SourceFilename: "f.pdf"}
	if err := subs.Create(ctx, s); err != nil {
		t.Fatal(err)
	}
	sample := &entity.Sample{SampleNumber: 1, Name: "S1", SampleType: constants.SampleTypeDNA}
	if err := subs.Complete(ctx, repository.Completion{SubmissionID: s.ID, Samples: []*entity.Sample{sample}}); err != nil {
		t.Fatal(err)
	}
	return db, sample.ID
}

func TestServiceHappyPathAndHistory(t *testing.T) {
	db, id := newSample(t)
	svc := NewService(repository.NewSampleRepository(db, quiet()), quiet())
	ctx := common.WithOperator(context.Background(), "lab-bot")

	path := []constants.SampleStatus{
		constants.SamplePrep, constants.SampleSequencing, constants.SampleFailed,
		constants.SamplePrep, constants.SampleSequencing, constants.SampleAnalysis,
		constants.SampleCompleted, constants.SampleDistributed, constants.SampleArchived,
	}
	for _, st := range path {
		step, err := svc.Transition(ctx, id, st, "", "")
		if err != nil {
			t.Fatalf("transition to %s: %v", st, err)
		}
		if step.Operator != "lab-bot" {
			t.Errorf("operator = %q", step.Operator)
		}
	}

	hist, err := svc.History(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	var got []constants.SampleStatus
	for _, h := range hist {
		got = append(got, h.Stage)
	}
	want := append([]constants.SampleStatus{constants.SampleSubmitted}, path...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("history (-want +got):\n%s", diff)
	}
}

func TestServiceRejectsDisallowedMove(t *testing.T) {
	db, id := newSample(t)
	repo := repository.NewSampleRepository(db, quiet())
	svc := NewService(repo, quiet())
	ctx := context.Background()

	_, err := svc.Transition(ctx, id, constants.SampleCompleted, "kim", "")
	var ite *common.InvalidTransitionError
	if !errors.As(err, &ite) || ite.From != "submitted" || ite.To != "completed" {
		t.Fatalf("err = %v", err)
	}
	s, _ := repo.Get(ctx, id)
	if s.Status != constants.SampleSubmitted {
		t.Errorf("status changed to %q", s.Status)
	}
	hist, _ := svc.History(ctx, id)
	if len(hist) != 1 {
		t.Errorf("history grew to %d", len(hist))
	}

	if _, err := svc.Transition(ctx, uuid.New(), constants.SamplePrep, "", ""); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("unknown sample err = %v", err)
	}
	if _, err := svc.Transition(ctx, id, "shipped", "", ""); common.Kind(err) != common.KindValidation {
		t.Errorf("unknown target err = %v", err)
	}
}

func TestConcurrentTransitionsOneWinner(t *testing.T) {
	db, id := newSample(t)
	svc := NewService(repository.NewSampleRepository(db, quiet()), quiet())
	ctx := context.Background()

	targets := []constants.SampleStatus{constants.SamplePrep, constants.SampleCancelled}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, st := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Transition(ctx, id, st, "", "")
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, common.ErrInvalidTransition):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("winners = %d, want 1 (errs %v)", wins, errs)
	}
	hist, _ := svc.History(ctx, id)
	if len(hist) != 2 {
		t.Errorf("history = %d steps, want 2", len(hist))
	}
}

// conflictRepo loses the compare-and-set a fixed number of times.
type conflictRepo struct {
	repository.SampleRepository
	status    constants.SampleStatus
	conflicts int
	calls     int
}

func (r *conflictRepo) Get(context.Context, uuid.UUID) (*entity.Sample, error) {
	return &entity.Sample{Status: r.status}, nil
}

func (r *conflictRepo) Transition(_ context.Context, _ uuid.UUID, _, to constants.SampleStatus, _ *entity.ProcessingStep) error {
	r.calls++
	if r.calls <= r.conflicts {
		return common.ErrConflict
	}
	r.status = to
	return nil
}

func TestServiceRetriesConflicts(t *testing.T) {
	repo := &conflictRepo{status: constants.SampleSubmitted, conflicts: 2}
	if _, err := NewService(repo, quiet()).Transition(context.Background(), uuid.New(), constants.SamplePrep, "", ""); err != nil {
		t.Fatalf("err = %v", err)
	}
	if repo.calls != 3 {
		t.Errorf("calls = %d", repo.calls)
	}

	stubborn := &conflictRepo{status: constants.SampleSubmitted, conflicts: 10}
	_, err := NewService(stubborn, quiet()).Transition(context.Background(), uuid.New(), constants.SamplePrep, "", "")
	if !errors.Is(err, common.ErrConflict) || stubborn.calls != maxAttempts {
		t.Errorf("err = %v calls = %d", err, stubborn.calls)
	}
}
