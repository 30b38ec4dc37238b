package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	"github.com/joseph-ayodele/nanopore-tracker/internal/entity"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := Open(context.Background(), Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db")}, logger)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func seedSubmission(t *testing.T, db *DB, number string, samples int) (*entity.Submission, []*entity.Sample) {
	t.Helper()
	ctx := context.Background()
	subs := NewSubmissionRepository(db, nil)
	s := &entity.Submission{SubmissionNumber: number, SourceFilename: "form.pdf"}
	if err := subs.Create(ctx, s); err != nil {
		t.Fatalf("create: %v", err)
	}
	var out []*entity.Sample
	for i := 1; i <= samples; i++ {
		out = append(out, &entity.Sample{
			SampleNumber:    i,
			SourceIndex:     iptr(i),
			Name:            "S" + string(rune('0'+i)),
			SampleType:      constants.SampleTypeDNA,
			Concentration:   fptr(12.5),
			Qubit:           fptr(12.5),
			Volume:          fptr(20),
			FieldConfidence: map[string]float64{"name": 100},
			ConfidenceScore: 100,
			Grade:           "excellent",
		})
	}
	err := subs.Complete(ctx, Completion{
		SubmissionID:  s.ID,
		SubmitterName: "Ana Ruiz",
		Metadata:      map[string]string{"organism": "E. coli"},
		Warnings:      []string{"printed row indices skip 4"},
		Samples:       out,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	return s, out
}

func TestSqliteDSN(t *testing.T) {
	got := sqliteDSN("/tmp/a.db")
	want := "file:/tmp/a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	if got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
	if got := sqliteDSN("file:x.db?_pragma=busy_timeout(100)"); got != "file:x.db?_pragma=busy_timeout(100)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)" {
		t.Errorf("dsn = %q", got)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if err := db.HealthCheck(context.Background(), 0); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestSubmissionRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	s, samples := seedSubmission(t, db, "SUB-20260101-AAAAAA", 3)

	got, err := NewSubmissionRepository(db, nil).Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != constants.SubmissionCompleted || got.SampleCount != 3 || got.SubmitterName != "Ana Ruiz" {
		t.Errorf("submission = %+v", got)
	}
	if diff := cmp.Diff(map[string]string{"organism": "E. coli"}, got.Metadata); diff != "" {
		t.Errorf("metadata (-want +got):\n%s", diff)
	}

	stored, err := NewSampleRepository(db, nil).ListBySubmission(ctx, s.ID)
	if err != nil {
		t.Fatalf("list samples: %v", err)
	}
	opts := cmp.Options{cmpopts.IgnoreFields(entity.Sample{}, "CreatedAt", "UpdatedAt"), cmpopts.EquateEmpty()}
	if diff := cmp.Diff(samples, stored, opts); diff != "" {
		t.Errorf("samples (-want +got):\n%s", diff)
	}
	if stored[0].Nanodrop != nil || stored[0].A260230 != nil {
		t.Error("null readings must stay nil")
	}
}

func TestCreateDuplicateNumberIsConflict(t *testing.T) {
	db := newTestDB(t)
	seedSubmission(t, db, "SUB-20260101-AAAAAA", 0)

	err := NewSubmissionRepository(db, nil).Create(context.Background(), &entity.Submission{SubmissionNumber: "SUB-20260101-AAAAAA"})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestCompleteIsAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	subs := NewSubmissionRepository(db, nil)
	s := &entity.Submission{SubmissionNumber: "SUB-20260101-BBBBBB", SourceFilename: "f.pdf"}
	if err := subs.Create(ctx, s); err != nil {
		t.Fatal(err)
	}
	dup := []*entity.Sample{
		{SampleNumber: 1, Name: "A", SampleType: constants.SampleTypeDNA},
		{SampleNumber: 1, Name: "B", SampleType: constants.SampleTypeDNA},
	}
	if err := subs.Complete(ctx, Completion{SubmissionID: s.ID, Samples: dup}); err == nil {
		t.Fatal("duplicate sample_number should fail")
	}
	got, _ := subs.Get(ctx, s.ID)
	if got.Status != constants.SubmissionProcessing {
		t.Errorf("status = %q, want processing", got.Status)
	}
	left, _ := NewSampleRepository(db, nil).ListBySubmission(ctx, s.ID)
	if len(left) != 0 {
		t.Errorf("partial samples left behind: %d", len(left))
	}
}

func TestMarkFailedAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	subs := NewSubmissionRepository(db, nil)
	seedSubmission(t, db, "SUB-20260101-CCCCCC", 1)
	f := &entity.Submission{SubmissionNumber: "SUB-20260101-DDDDDD", SourceFilename: "bad.pdf"}
	if err := subs.Create(ctx, f); err != nil {
		t.Fatal(err)
	}
	if err := subs.MarkFailed(ctx, f.ID, common.KindExtraction, "no text", nil); err != nil {
		t.Fatal(err)
	}

	failed, total, err := subs.List(ctx, ListFilter{Status: constants.SubmissionFailed})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(failed) != 1 || failed[0].ErrorKind != common.KindExtraction {
		t.Errorf("failed list = %+v total=%d", failed, total)
	}
	all, total, _ := subs.List(ctx, ListFilter{Limit: 1})
	if total != 2 || len(all) != 1 {
		t.Errorf("page = %d total = %d", len(all), total)
	}
}

func TestDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	s, samples := seedSubmission(t, db, "SUB-20260101-EEEEEE", 2)
	subs, sams := NewSubmissionRepository(db, nil), NewSampleRepository(db, nil)

	if err := subs.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := subs.Get(ctx, s.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("get after delete: %v", err)
	}
	if _, err := sams.Get(ctx, samples[0].ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("sample survived: %v", err)
	}
	steps, _ := sams.History(ctx, samples[0].ID)
	if len(steps) != 0 {
		t.Errorf("steps survived: %d", len(steps))
	}
	if err := subs.Delete(ctx, uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("delete unknown: %v", err)
	}
}

func TestTransitionCompareAndSet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, samples := seedSubmission(t, db, "SUB-20260101-FFFFFF", 1)
	repo := NewSampleRepository(db, nil)
	id := samples[0].ID

	if err := repo.Transition(ctx, id, constants.SampleSubmitted, constants.SamplePrep, &entity.ProcessingStep{Operator: "kim"}); err != nil {
		t.Fatalf("transition: %v", err)
	}
	// stale from-state loses
	err := repo.Transition(ctx, id, constants.SampleSubmitted, constants.SampleCancelled, &entity.ProcessingStep{})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("stale transition err = %v", err)
	}

	got, _ := repo.Get(ctx, id)
	if got.Status != constants.SamplePrep {
		t.Errorf("status = %q", got.Status)
	}
	steps, err := repo.History(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	var stages []constants.SampleStatus
	for _, s := range steps {
		stages = append(stages, s.Stage)
	}
	if diff := cmp.Diff([]constants.SampleStatus{constants.SampleSubmitted, constants.SamplePrep}, stages); diff != "" {
		t.Errorf("history (-want +got):\n%s", diff)
	}
	if steps[1].FromStage != constants.SampleSubmitted || steps[1].Operator != "kim" {
		t.Errorf("step = %+v", steps[1])
	}
}
