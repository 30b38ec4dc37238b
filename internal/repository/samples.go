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

var sampleColumns = []string{
	"id", "submission_id", "sample_number", "source_index", "name", "sample_type",
	"concentration", "volume", "qubit", "nanodrop", "a260_280", "a260_230", "buffer",
	"field_confidence", "confidence_score", "grade", "issues", "low_confidence",
	"status", "priority", "created_at", "updated_at",
}

var stepColumns = []string{"id", "sample_id", "step_order", "stage", "from_stage", "entered_at", "operator", "note"}

type SampleRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.Sample, error)
	ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*entity.Sample, error)
	// Transition moves a sample from one status to another and appends step, atomically.
	// It returns common.ErrConflict when the stored status is no longer from.
	Transition(ctx context.Context, id uuid.UUID, from, to constants.SampleStatus, step *entity.ProcessingStep) error
	History(ctx context.Context, sampleID uuid.UUID) ([]*entity.ProcessingStep, error)
}

type sampleRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewSampleRepository(db *DB, logger *slog.Logger) SampleRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &sampleRepo{db: db, logger: logger}
}

func (r *sampleRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Sample, error) {
	b := r.db.builder()
	q, args := b.Select(sampleColumns...).From(b.Table(tableSamples)).Where(entsql.EQ("id", id)).Query()
	out, err := r.query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, common.NewNotFoundError("sample", id)
	}
	return out[0], nil
}

func (r *sampleRepo) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*entity.Sample, error) {
	b := r.db.builder()
	q, args := b.Select(sampleColumns...).From(b.Table(tableSamples)).
		Where(entsql.EQ("submission_id", submissionID)).
		OrderBy(entsql.Asc("sample_number")).
		Query()
	return r.query(ctx, q, args)
}

func (r *sampleRepo) Transition(ctx context.Context, id uuid.UUID, from, to constants.SampleStatus, step *entity.ProcessingStep) error {
	b := r.db.builder()
	return r.db.WithTx(ctx, func(tx dialect.Tx) error {
		q, args := b.Update(tableSamples).
			Set("status", string(to)).
			Set("updated_at", step.EnteredAt).
			Where(entsql.And(entsql.EQ("id", id), entsql.EQ("status", string(from)))).
			Query()
		var res sql.Result
		if err := tx.Exec(ctx, q, args, &res); err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return common.ErrConflict
		}

		mq, margs := b.Select("COALESCE(MAX(step_order), 0)").From(b.Table(tableSteps)).
			Where(entsql.EQ("sample_id", id)).Query()
		var rows entsql.Rows
		if err := tx.Query(ctx, mq, margs, &rows); err != nil {
			return err
		}
		last := 0
		if rows.Next() {
			if err := rows.Scan(&last); err != nil {
				_ = rows.Close()
				return err
			}
		}
		if err := rows.Close(); err != nil {
			return err
		}

		step.SampleID = id
		step.FromStage = from
		step.Stage = to
		return insertStep(ctx, b, tx, step, last+1)
	})
}

func (r *sampleRepo) History(ctx context.Context, sampleID uuid.UUID) ([]*entity.ProcessingStep, error) {
	b := r.db.builder()
	q, args := b.Select(stepColumns...).From(b.Table(tableSteps)).
		Where(entsql.EQ("sample_id", sampleID)).
		OrderBy(entsql.Asc("step_order")).
		Query()
	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.ProcessingStep
	for rows.Next() {
		var (
			st          entity.ProcessingStep
			order       int
			stage, from string
			entered     dbTime
		)
		if err := rows.Scan(&st.ID, &st.SampleID, &order, &stage, &from, &entered, &st.Operator, &st.Note); err != nil {
			return nil, err
		}
		st.Stage, st.FromStage = constants.SampleStatus(stage), constants.SampleStatus(from)
		st.EnteredAt = entered.t
		out = append(out, &st)
	}
	return out, rows.Err()
}

func (r *sampleRepo) query(ctx context.Context, q string, args []any) ([]*entity.Sample, error) {
	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		r.logger.Error("sample query failed", "error", err)
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.Sample
	for rows.Next() {
		var (
			s                                      entity.Sample
			srcIdx                                 sql.NullInt64
			conc, vol, qubit, nanodrop, a280, a230 sql.NullFloat64
			sampleType, status, priority           string
			fieldConf, issues                      jsonText
			created, updated                       dbTime
		)
		if err := rows.Scan(&s.ID, &s.SubmissionID, &s.SampleNumber, &srcIdx, &s.Name, &sampleType,
			&conc, &vol, &qubit, &nanodrop, &a280, &a230, &s.Buffer,
			&fieldConf, &s.ConfidenceScore, &s.Grade, &issues, &s.LowConfidence,
			&status, &priority, &created, &updated); err != nil {
			return nil, err
		}
		s.SourceIndex = intPtr(srcIdx)
		s.SampleType = constants.SampleType(sampleType)
		s.Concentration, s.Volume, s.Qubit = floatPtr(conc), floatPtr(vol), floatPtr(qubit)
		s.Nanodrop, s.A260280, s.A260230 = floatPtr(nanodrop), floatPtr(a280), floatPtr(a230)
		s.Status, s.Priority = constants.SampleStatus(status), constants.Priority(priority)
		if err := fieldConf.decode(&s.FieldConfidence); err != nil {
			return nil, err
		}
		if err := issues.decode(&s.Issues); err != nil {
			return nil, err
		}
		s.CreatedAt, s.UpdatedAt = created.t, updated.t
		out = append(out, &s)
	}
	return out, rows.Err()
}

func insertSample(ctx context.Context, b *entsql.DialectBuilder, tx dialect.ExecQuerier, s *entity.Sample, now time.Time) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt, s.UpdatedAt = now, now
	if s.Status == "" {
		s.Status = constants.SampleSubmitted
	}
	if s.Priority == "" {
		s.Priority = constants.PriorityNormal
	}
	q, args := b.Insert(tableSamples).Columns(sampleColumns...).
		Values(s.ID, s.SubmissionID, s.SampleNumber, nullInt(s.SourceIndex), s.Name, string(s.SampleType),
			nullFloat(s.Concentration), nullFloat(s.Volume), nullFloat(s.Qubit), nullFloat(s.Nanodrop),
			nullFloat(s.A260280), nullFloat(s.A260230), s.Buffer,
			encodeJSON(s.FieldConfidence, "{}"), s.ConfidenceScore, s.Grade, encodeJSON(s.Issues, "[]"),
			s.LowConfidence, string(s.Status), string(s.Priority), s.CreatedAt, s.UpdatedAt).
		Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		return errors.Join(common.ErrDatabase, err)
	}
	return nil
}

func insertStep(ctx context.Context, b *entsql.DialectBuilder, tx dialect.ExecQuerier, st *entity.ProcessingStep, order int) error {
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	if st.EnteredAt.IsZero() {
		st.EnteredAt = time.Now().UTC()
	}
	q, args := b.Insert(tableSteps).Columns(stepColumns...).
		Values(st.ID, st.SampleID, order, string(st.Stage), string(st.FromStage), st.EnteredAt, st.Operator, st.Note).
		Query()
	if err := tx.Exec(ctx, q, args, nil); err != nil {
		return errors.Join(common.ErrDatabase, err)
	}
	return nil
}
