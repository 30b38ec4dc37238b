package repository

import (
	"testing"

	"entgo.io/ent"
	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/nanopore-tracker/db/ent/schema"
)

func fieldNames(fields []ent.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Descriptor().Name
	}
	return out
}

// The runtime DDL and the ent schema must describe the same columns.
func TestColumnsMatchEntSchema(t *testing.T) {
	cases := []struct {
		table  string
		schema []ent.Field
		cols   []string
	}{
		{tableSubmissions, schema.Submission{}.Fields(), submissionColumns},
		{tableSamples, schema.Sample{}.Fields(), sampleColumns},
		{tableSteps, schema.ProcessingStep{}.Fields(), stepColumns},
	}
	for _, tc := range cases {
		t.Run(tc.table, func(t *testing.T) {
			if diff := cmp.Diff(fieldNames(tc.schema), tc.cols); diff != "" {
				t.Errorf("columns (-schema +repository):\n%s", diff)
			}
		})
	}
}

func TestEntSchemaValidatesStatus(t *testing.T) {
	for _, f := range (schema.Sample{}).Fields() {
		d := f.Descriptor()
		if d.Name != "status" {
			continue
		}
		if len(d.Validators) == 0 {
			t.Fatal("status has no validator")
		}
		v := d.Validators[0].(func(string) error)
		if err := v("sequencing"); err != nil {
			t.Errorf("sequencing rejected: %v", err)
		}
		if err := v("shipped"); err == nil {
			t.Error("unknown status accepted")
		}
	}
}
