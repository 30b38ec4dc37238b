package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
	"github.com/joseph-ayodele/nanopore-tracker/db/ent/schema/utils"
)

type Sample struct{ ent.Schema }

func (Sample) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "samples"},
	}
}

func (Sample) Fields() []ent.Field {
	reading := func(name string) ent.Field {
		return field.Float(name).Optional().Nillable()
	}
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(uuid.New).
			Immutable(),
		field.UUID("submission_id", uuid.UUID{}).Immutable(),
		// dense 1..N within the submission
		field.Int("sample_number").Positive().Immutable(),
		// row index as printed in the source document
		field.Int("source_index").Optional().Nillable(),
		field.String("name").NotEmpty(),
		field.String("sample_type").
			Validate(utils.EnumValidator(constants.SampleTypesAsStrings()...)),
		reading("concentration"),
		reading("volume"),
		reading("qubit"),
		reading("nanodrop"),
		reading("a260_280"),
		reading("a260_230"),
		field.String("buffer").Default(""),
		field.JSON("field_confidence", map[string]float64{}).
			SchemaType(map[string]string{dialect.Postgres: "jsonb"}),
		field.Float("confidence_score").Min(0).Max(100),
		field.String("grade").Default(""),
		field.JSON("issues", []string{}).
			SchemaType(map[string]string{dialect.Postgres: "jsonb"}),
		field.Bool("low_confidence").Default(false),
		field.String("status").
			Default(string(constants.SampleSubmitted)).
			Validate(utils.EnumValidator(constants.SampleStatuses()...)),
		field.String("priority").
			Default(string(constants.PriorityNormal)).
			Validate(utils.EnumValidator(
				constants.PriorityLow,
				constants.PriorityNormal,
				constants.PriorityHigh,
				constants.PriorityUrgent,
			)),
		field.Time("created_at").Default(time.Now).Immutable(),
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),
	}
}

func (Sample) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("submission", Submission.Type).
			Ref("samples").
			Field("submission_id").
			Unique().
			Required().
			Immutable(),
		// ONE sample -> MANY processing steps
		edge.To("steps", ProcessingStep.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (Sample) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("submission_id", "sample_number").Unique(),
		index.Fields("status"),
	}
}
