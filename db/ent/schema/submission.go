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

type Submission struct{ ent.Schema }

func (Submission) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "submissions"},
	}
}

func (Submission) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(uuid.New).
			Immutable(),
		field.String("submission_number").
			NotEmpty().
			Unique().
			Immutable(),
		field.String("source_filename").NotEmpty(),
		field.String("submitter_name").Default(""),
		field.String("submitter_email").Default(""),
		field.String("submitter_lab").Default(""),
		field.String("status").
			Default(string(constants.SubmissionProcessing)).
			Validate(utils.EnumValidator(
				constants.SubmissionProcessing,
				constants.SubmissionCompleted,
				constants.SubmissionFailed,
			)),
		field.Int("sample_count").NonNegative().Default(0),
		field.JSON("metadata", map[string]string{}).
			SchemaType(map[string]string{dialect.Postgres: "jsonb"}),
		field.JSON("warnings", []string{}).
			SchemaType(map[string]string{dialect.Postgres: "jsonb"}),
		field.String("error_kind").Default(""),
		field.String("error_message").Default(""),
		field.Time("created_at").Default(time.Now).Immutable(),
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),
	}
}

func (Submission) Edges() []ent.Edge {
	return []ent.Edge{
		// ONE submission -> MANY samples
		edge.To("samples", Sample.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (Submission) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
		index.Fields("created_at"),
	}
}
