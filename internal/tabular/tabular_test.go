package tabular

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	"github.com/joseph-ayodele/nanopore-tracker/internal/extract"
)

func ptr(v float64) *float64 { return &v }

func TestMapColumns(t *testing.T) {
	got := mapColumns([]string{"#", "Sample Name", "Sample_Type", "Volume (uL)", "Qubit ng/uL", "Nanodrop", "A260/280", "A260_230", "Buffer", "Submitter", "Contact Email"})
	want := map[string]int{
		colIndex: 0, colName: 1, colSampleType: 2, colVolume: 3, colQubit: 4,
		colNanodrop: 5, colA260280: 6, colA260230: 7, colBuffer: 8,
		colSubmitterName: 9, colSubmitterEmail: 10,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mapColumns (-want +got):\n%s", diff)
	}
}

func TestReadCSV(t *testing.T) {
	in := strings.Join([]string{
		"Sample Name,Conc,Vol,Nanodrop,260/280,260/230,Buffer,Type,Submitter,Email",
		"S1,12.5,20,14,1.85,2.01,TE,gDNA,Ana Ruiz,ana@lab.org",
		"S2,n/a,15,-,1.9,,EB,,,",
		",,,,,,,,,",
		"BLANK,,,,,,,,,",
		"S3,abc,10,11,1.8,2.0,,,,",
	}, "\n")
	sheet, err := NewReader(extract.DefaultConfig(), nil).ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(sheet.Candidates) != 4 {
		t.Fatalf("candidates = %d, want 4", len(sheet.Candidates))
	}

	first := sheet.Candidates[0].(extract.NumericRow)
	if first.Index != 1 || *first.Qubit != 12.5 || *first.A260230 != 2.01 {
		t.Errorf("first row = %+v", first)
	}
	if diff := cmp.Diff(map[string]string{"buffer": "TE", "sample_type": "gDNA"}, first.Attrs); diff != "" {
		t.Errorf("attrs (-want +got):\n%s", diff)
	}

	second := sheet.Candidates[1].(extract.NumericRow)
	if second.Qubit != nil || second.Nanodrop != nil || second.A260230 != nil {
		t.Errorf("placeholders should be nil: %+v", second)
	}
	if diff := cmp.Diff(ptr(15), second.Volume); diff != "" {
		t.Errorf("volume (-want +got):\n%s", diff)
	}

	blank, ok := sheet.Candidates[2].(extract.SpecialRow)
	if !ok || blank.Name != "BLANK" || blank.Index != 3 {
		t.Errorf("blank row = %#v", sheet.Candidates[2])
	}

	if len(sheet.Warnings) != 1 || !strings.Contains(sheet.Warnings[0], `qubit "abc"`) {
		t.Errorf("warnings = %v", sheet.Warnings)
	}
	wantPage := "Submitter Name: Ana Ruiz\nEmail: ana@lab.org\n"
	if sheet.Pages[0] != wantPage {
		t.Errorf("page = %q, want %q", sheet.Pages[0], wantPage)
	}
}

func TestReadCSVWithoutNameColumn(t *testing.T) {
	_, err := NewReader(extract.DefaultConfig(), nil).ReadCSV(strings.NewReader("a,b\n1,2\n"))
	if common.Kind(err) != common.KindExtraction {
		t.Fatalf("err = %v, want extraction error", err)
	}
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.xlsx")
	f := excelize.NewFile()
	sh := f.GetSheetName(0)
	rows := [][]any{
		{"Batch from Smith Lab"},
		{"No.", "Sample ID", "Volume", "Qubit", "Nanodrop", "A260/280"},
		{7, "HMW-1", 30, 50.5, 61, 1.88},
		{9, "HMW-2", 25, 40, 45, 1.9},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sh, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	sheet, err := NewReader(extract.DefaultConfig(), nil).ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(sheet.Candidates) != 2 {
		t.Fatalf("candidates = %d", len(sheet.Candidates))
	}
	second := sheet.Candidates[1].(extract.NumericRow)
	if second.Index != 9 || second.Name != "HMW-2" || *second.Qubit != 40 {
		t.Errorf("second = %+v", second)
	}
}
