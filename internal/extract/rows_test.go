package extract

import (
	"fmt"
	"testing"
)

func regionOf(lines ...string) Region {
	r := Region{Sections: 1}
	for _, l := range lines {
		r.Lines = append(r.Lines, RegionLine{Page: 1, Text: l})
	}
	return r
}

// Rows alternate between having and lacking the trailing ratio. Every one of them
// must be extracted, not just every other row.
func TestExtractRowsAlternatingOptionalColumn(t *testing.T) {
	var lines []string
	for i := 1; i <= 40; i++ {
		lines = append(lines, numericLine(i, fmt.Sprintf("S-%03d", i), i%2 == 1))
	}

	cands := ExtractRows(DefaultConfig(), regionOf(lines...))
	if len(cands) != 40 {
		t.Fatalf("extracted %d rows, want 40", len(cands))
	}
	for i, c := range cands {
		row, ok := c.(NumericRow)
		if !ok {
			t.Fatalf("row %d: got %T, want NumericRow", i+1, c)
		}
		if row.Index != i+1 {
			t.Fatalf("row %d: index = %d", i+1, row.Index)
		}
		if want := fmt.Sprintf("S-%03d", i+1); row.Name != want {
			t.Fatalf("row %d: name = %q, want %q", i+1, row.Name, want)
		}
		if row.Volume == nil || *row.Volume != 20 {
			t.Fatalf("row %d: volume = %v", i+1, row.Volume)
		}
		if row.A260280 == nil || *row.A260280 != 1.85 {
			t.Fatalf("row %d: a260_280 = %v", i+1, row.A260280)
		}
		has230 := (i+1)%2 == 1
		if (row.A260230 != nil) != has230 {
			t.Fatalf("row %d: a260_230 present = %v, want %v", i+1, row.A260230 != nil, has230)
		}
	}
}

func TestExtractRowsParsesFields(t *testing.T) {
	tests := []struct {
		line string
		want NumericRow
	}{
		{
			line: "7   Ecoli K12 rep 2   25   41.2   55.0   1.91   2.10",
			want: NumericRow{Index: 7, Name: "Ecoli K12 rep 2", Volume: ptr(25), Qubit: ptr(41.2), Nanodrop: ptr(55), A260280: ptr(1.91), A260230: ptr(2.10)},
		},
		{
			line: "12. 12 30 0 3.5 1.70",
			want: NumericRow{Index: 12, Name: "12", Volume: ptr(30), Qubit: ptr(0), Nanodrop: ptr(3.5), A260280: ptr(1.70)},
		},
		{
			line: "3\tHMW-3\t15\tN/A\t22.4\t-\t1.9",
			want: NumericRow{Index: 3, Name: "HMW-3", Volume: ptr(15), Nanodrop: ptr(22.4), A260230: ptr(1.9)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cands := ExtractRows(DefaultConfig(), regionOf(tt.line))
			if len(cands) != 1 {
				t.Fatalf("got %d candidates, want 1", len(cands))
			}
			got, ok := cands[0].(NumericRow)
			if !ok {
				t.Fatalf("got %T, want NumericRow", cands[0])
			}
			if got.Index != tt.want.Index || got.Name != tt.want.Name {
				t.Fatalf("index/name = %d/%q, want %d/%q", got.Index, got.Name, tt.want.Index, tt.want.Name)
			}
			checks := []struct {
				field     string
				got, want *float64
			}{
				{"volume", got.Volume, tt.want.Volume},
				{"qubit", got.Qubit, tt.want.Qubit},
				{"nanodrop", got.Nanodrop, tt.want.Nanodrop},
				{"a260_280", got.A260280, tt.want.A260280},
				{"a260_230", got.A260230, tt.want.A260230},
			}
			for _, c := range checks {
				if (c.got == nil) != (c.want == nil) || (c.got != nil && *c.got != *c.want) {
					t.Fatalf("%s = %v, want %v", c.field, deref(c.got), deref(c.want))
				}
			}
		})
	}
}

func deref(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// Labels ending in a number, with and without the trailing A260/230 column. The
// number belongs to the label whenever that leaves every reading in range.
func TestExtractRowsNumberedLabels(t *testing.T) {
	tests := []struct {
		line      string
		want      NumericRow
		ambiguous bool
	}{
		{
			line:      "7   Ecoli K12 rep 2   25   41.2   55.0   1.91",
			want:      NumericRow{Index: 7, Name: "Ecoli K12 rep 2", Volume: ptr(25), Qubit: ptr(41.2), Nanodrop: ptr(55), A260280: ptr(1.91)},
			ambiguous: true,
		},
		{
			line: "7   Ecoli K12 rep 2   25   41.2   55.0   1.91   2.10",
			want: NumericRow{Index: 7, Name: "Ecoli K12 rep 2", Volume: ptr(25), Qubit: ptr(41.2), Nanodrop: ptr(55), A260280: ptr(1.91), A260230: ptr(2.10)},
		},
		{
			line:      "12   Sample 12   20   30   32   1.9",
			want:      NumericRow{Index: 12, Name: "Sample 12", Volume: ptr(20), Qubit: ptr(30), Nanodrop: ptr(32), A260280: ptr(1.9)},
			ambiguous: true,
		},
		{
			line: "12   Sample 12   20   30   32   1.9   2.0",
			want: NumericRow{Index: 12, Name: "Sample 12", Volume: ptr(20), Qubit: ptr(30), Nanodrop: ptr(32), A260280: ptr(1.9), A260230: ptr(2.0)},
		},
		{
			line: "4   S-004   20   10.0   12.0   1.85",
			want: NumericRow{Index: 4, Name: "S-004", Volume: ptr(20), Qubit: ptr(10), Nanodrop: ptr(12), A260280: ptr(1.85)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cands := ExtractRows(DefaultConfig(), regionOf(tt.line))
			if len(cands) != 1 {
				t.Fatalf("got %d candidates, want 1", len(cands))
			}
			got := cands[0].(NumericRow)
			if got.Name != tt.want.Name {
				t.Fatalf("name = %q, want %q", got.Name, tt.want.Name)
			}
			if got.Ambiguous != tt.ambiguous {
				t.Fatalf("ambiguous = %v, want %v", got.Ambiguous, tt.ambiguous)
			}
			for _, c := range []struct {
				field     string
				got, want *float64
			}{
				{"volume", got.Volume, tt.want.Volume},
				{"qubit", got.Qubit, tt.want.Qubit},
				{"nanodrop", got.Nanodrop, tt.want.Nanodrop},
				{"a260_280", got.A260280, tt.want.A260280},
				{"a260_230", got.A260230, tt.want.A260230},
			} {
				if (c.got == nil) != (c.want == nil) || (c.got != nil && *c.got != *c.want) {
					t.Fatalf("%s = %v, want %v", c.field, deref(c.got), deref(c.want))
				}
			}
		})
	}
}

func TestExtractRowsSpecialEntries(t *testing.T) {
	cands := ExtractRows(DefaultConfig(), regionOf(
		"94   positive   control",
		"95   BLANK",
		"96   Negative Control   water only",
		"97   ntc",
		"98   Blanket-4",
	))
	want := []string{"Positive control", "BLANK", "Negative control", "NTC"}
	if len(cands) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(cands), len(want))
	}
	for i, c := range cands {
		row, ok := c.(SpecialRow)
		if !ok {
			t.Fatalf("%d: got %T, want SpecialRow", i, c)
		}
		if row.Name != want[i] {
			t.Fatalf("%d: name = %q, want %q", i, row.Name, want[i])
		}
		if row.Index != 94+i {
			t.Fatalf("%d: index = %d", i, row.Index)
		}
	}
}

func TestExtractRowsIgnoresProse(t *testing.T) {
	cands := ExtractRows(DefaultConfig(), regionOf(
		"Page 2 of 3",
		"(µL)   (ng/µL)   (ng/µL)",
		"Please ship samples on dry ice",
		"",
	))
	if len(cands) != 0 {
		t.Fatalf("got %d candidates from prose, want 0: %#v", len(cands), cands)
	}
}

func TestDedupKeepsFirstAndIsIdempotent(t *testing.T) {
	cands := []Candidate{
		NumericRow{Index: 1, Name: "A", Volume: ptr(10)},
		NumericRow{Index: 2, Name: "B"},
		NumericRow{Index: 3, Name: "a", Volume: ptr(99)},
		SpecialRow{Index: 4, Name: "BLANK"},
		SpecialRow{Index: 5, Name: "blank"},
	}

	once := Dedup(cands)
	if len(once) != 3 {
		t.Fatalf("dedup kept %d, want 3", len(once))
	}
	if v := once[0].(NumericRow).Volume; v == nil || *v != 10 {
		t.Fatalf("first occurrence not kept: %v", deref(v))
	}

	twice := Dedup(append(append([]Candidate(nil), cands...), cands...))
	if len(twice) != len(once) {
		t.Fatalf("doubled input kept %d, want %d", len(twice), len(once))
	}
	if again := Dedup(once); len(again) != len(once) {
		t.Fatalf("dedup of dedup changed length: %d vs %d", len(again), len(once))
	}
}
