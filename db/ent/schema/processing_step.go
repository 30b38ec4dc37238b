package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
	"github.com/joseph-ayodele/nanopore-tracker/db/ent/schema/utils"
)

// ProcessingStep is append-only: every field is immutable.
type ProcessingStep struct{ ent.Schema }

func (ProcessingStep) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "processing_steps"},
	}
}

func (ProcessingStep) Fields() []ent.Field {
	statuses := constants.SampleStatuses()
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(uuid.New).
			Immutable(),
		field.UUID("sample_id", uuid.UUID{}).Immutable(),
		field.Int("step_order").Positive().Immutable(),
		field.String("stage").
			Immutable().
			Validate(utils.EnumValidator(statuses...)),
		field.String("from_stage").Default("").Immutable(),
		field.Time("entered_at").Default(time.Now).Immutable(),
		field.String("operator").Default("").Immutable(),
		field.String("note").Default("").Immutable(),
	}
}

func (ProcessingStep) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("sample", Sample.Type).
			Ref("steps").
			Field("sample_id").
			Unique().
			Required().
			Immutable(),
	}
}

func (ProcessingStep) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("sample_id", "step_order").Unique(),
	}
}
