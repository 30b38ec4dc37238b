package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	"github.com/joseph-ayodele/nanopore-tracker/internal/entity"
)

const (
	tableSubmissions = "submissions"
	tableSamples     = "samples"
	tableSteps       = "processing_steps"
)

var submissionColumns = []string{
	"id", "submission_number", "source_filename", "submitter_name", "submitter_email",
	"submitter_lab", "status", "sample_count", "metadata", "warnings", "error_kind",
	"error_message", "created_at", "updated_at",
}

// Completion is everything written when a submission's extraction succeeds.
type Completion struct {
	SubmissionID   uuid.UUID
	SubmitterName  string
	SubmitterEmail string
	SubmitterLab   string
	Metadata       map[string]string
	Warnings       []string
	Samples        []*entity.Sample
	Operator       string
}

type ListFilter struct {
	Status constants.SubmissionStatus // empty = any
	Limit  int
	Offset int
}

type SubmissionRepository interface {
	Create(ctx context.Context, s *entity.Submission) error
	Complete(ctx context.Context, c Completion) error
	MarkFailed(ctx context.Context, id uuid.UUID, kind, message string, warnings []string) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Submission, error)
	List(ctx context.Context, f ListFilter) ([]*entity.Submission, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type submissionRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewSubmissionRepository(db *DB, logger *slog.Logger) SubmissionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &submissionRepo{db: db, logger: logger}
}

func (r *submissionRepo) Create(ctx context.Context, s *entity.Submission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = constants.SubmissionProcessing
	}

	q, args := r.db.builder().Insert(tableSubmissions).
		Columns(submissionColumns...).
		Values(s.ID, s.SubmissionNumber, s.SourceFilename, s.SubmitterName, s.SubmitterEmail,
			s.SubmitterLab, string(s.Status), s.SampleCount, encodeJSON(s.Metadata, "{}"),
			encodeJSON(s.Warnings, "[]"), s.ErrorKind, s.ErrorMessage, s.CreatedAt, s.UpdatedAt).
		Query()
	if err := r.db.drv.Exec(ctx, q, args, nil); err != nil {
		if isUniqueViolation(err) {
			return common.WrapError(errors.Join(common.ErrConflict, err), "create submission "+s.SubmissionNumber)
		}
		r.logger.Error("submission create failed", "submission_number", s.SubmissionNumber, "error", err)
		return common.WrapError(errors.Join(common.ErrDatabase, err), "create submission")
	}
	return nil
}

// Complete inserts every sample with its initial processing step and flips the
// submission to completed, all in one transaction.
func (r *submissionRepo) Complete(ctx context.Context, c Completion) error {
	now := time.Now().UTC()
	err := r.db.WithTx(ctx, func(tx dialect.Tx) error {
		for _, s := range c.Samples {
			s.SubmissionID = c.SubmissionID
			if err := insertSample(ctx, r.db.builder(), tx, s, now); err != nil {
				return err
			}
			step := &entity.ProcessingStep{
				SampleID:  s.ID,
				Stage:     s.Status,
				EnteredAt: now,
				Operator:  c.Operator,
				Note:      "created from submission intake",
			}
			if err := insertStep(ctx, r.db.builder(), tx, step, 1); err != nil {
				return err
			}
		}
		q, args := r.db.builder().Update(tableSubmissions).
			Set("status", string(constants.SubmissionCompleted)).
			Set("sample_count", len(c.Samples)).
			Set("submitter_name", c.SubmitterName).
			Set("submitter_email", c.SubmitterEmail).
			Set("submitter_lab", c.SubmitterLab).
			Set("metadata", encodeJSON(c.Metadata, "{}")).
			Set("warnings", encodeJSON(c.Warnings, "[]")).
			Set("updated_at", now).
			Where(entsql.EQ("id", c.SubmissionID)).
			Query()
		var res sql.Result
		if err := tx.Exec(ctx, q, args, &res); err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return common.NewNotFoundError("submission", c.SubmissionID)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("submission complete failed", "submission_id", c.SubmissionID, "samples", len(c.Samples), "error", err)
		return err
	}
	return nil
}

func (r *submissionRepo) MarkFailed(ctx context.Context, id uuid.UUID, kind, message string, warnings []string) error {
	q, args := r.db.builder().Update(tableSubmissions).
		Set("status", string(constants.SubmissionFailed)).
		Set("error_kind", kind).
		Set("error_message", message).
		Set("warnings", encodeJSON(warnings, "[]")).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id)).
		Query()
	if err := r.db.drv.Exec(ctx, q, args, nil); err != nil {
		r.logger.Error("submission mark failed failed", "submission_id", id, "error", err)
		return err
	}
	return nil
}

func (r *submissionRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Submission, error) {
	q, args := r.db.builder().Select(submissionColumns...).
		From(r.db.builder().Table(tableSubmissions)).
		Where(entsql.EQ("id", id)).
		Query()
	subs, err := r.query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, common.NewNotFoundError("submission", id)
	}
	return subs[0], nil
}

// List returns one page of submissions, newest first, and the total matching count.
func (r *submissionRepo) List(ctx context.Context, f ListFilter) ([]*entity.Submission, int, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	b := r.db.builder()

	countSel := b.Select(entsql.Count("*")).From(b.Table(tableSubmissions))
	sel := b.Select(submissionColumns...).From(b.Table(tableSubmissions))
	if f.Status != "" {
		countSel = countSel.Where(entsql.EQ("status", string(f.Status)))
		sel = sel.Where(entsql.EQ("status", string(f.Status)))
	}

	cq, cargs := countSel.Query()
	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, cq, cargs, &rows); err != nil {
		return nil, 0, err
	}
	total := 0
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			_ = rows.Close()
			return nil, 0, err
		}
	}
	if err := rows.Close(); err != nil {
		return nil, 0, err
	}

	q, args := sel.OrderBy(entsql.Desc("created_at"), entsql.Desc("submission_number")).
		Limit(f.Limit).Offset(f.Offset).Query()
	subs, err := r.query(ctx, q, args)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

func (r *submissionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	q, args := r.db.builder().Delete(tableSubmissions).Where(entsql.EQ("id", id)).Query()
	var res sql.Result
	if err := r.db.drv.Exec(ctx, q, args, &res); err != nil {
		r.logger.Error("submission delete failed", "submission_id", id, "error", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.NewNotFoundError("submission", id)
	}
	return nil
}

func (r *submissionRepo) query(ctx context.Context, q string, args []any) ([]*entity.Submission, error) {
	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		r.logger.Error("submission query failed", "error", err)
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.Submission
	for rows.Next() {
		var (
			s                entity.Submission
			status           string
			meta, warns      jsonText
			created, updated dbTime
		)
		if err := rows.Scan(&s.ID, &s.SubmissionNumber, &s.SourceFilename, &s.SubmitterName,
			&s.SubmitterEmail, &s.SubmitterLab, &status, &s.SampleCount, &meta, &warns,
			&s.ErrorKind, &s.ErrorMessage, &created, &updated); err != nil {
			return nil, err
		}
		s.Status = constants.SubmissionStatus(status)
		if err := meta.decode(&s.Metadata); err != nil {
			return nil, err
		}
		if err := warns.decode(&s.Warnings); err != nil {
			return nil, err
		}
		s.CreatedAt, s.UpdatedAt = created.t, updated.t
		out = append(out, &s)
	}
	return out, rows.Err()
}
