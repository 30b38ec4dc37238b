package extract

import (
	"strings"
	"testing"
)

func TestStitchConcatenatesSectionsAcrossPages(t *testing.T) {
	cfg := DefaultConfig()
	pages := []string{
		tablePage("Submitter Name: Jane Doe", 1, 3, "Page 1 of 2"),
		tablePage("", 4, 5, "Page 2 of 2"),
	}

	region := Stitch(cfg, pages)
	if region.Sections != 2 {
		t.Fatalf("sections = %d, want 2", region.Sections)
	}
	// 5 rows plus 2 footers; the preamble precedes the first marker and is excluded.
	if len(region.Lines) != 7 {
		t.Fatalf("lines = %d, want 7:\n%s", len(region.Lines), region.Text())
	}
	if strings.Contains(region.Text(), "Submitter") {
		t.Fatalf("preamble leaked into region")
	}
	if strings.Contains(region.Text(), "Sample Name") {
		t.Fatalf("header marker leaked into region")
	}
	if got := region.Lines[0].Page; got != 1 {
		t.Fatalf("first line page = %d, want 1", got)
	}
	if got := region.Lines[len(region.Lines)-1].Page; got != 2 {
		t.Fatalf("last line page = %d, want 2", got)
	}
}

func TestStitchRepeatedMarkerOnOnePage(t *testing.T) {
	cfg := DefaultConfig()
	page := tableHeader + "\n1  A  20  10  12  1.8  2.0\n" + tableHeader + "\n2  B  20  10  12  1.8  2.0\n"

	region := Stitch(cfg, []string{page})
	if region.Sections != 2 {
		t.Fatalf("sections = %d, want 2", region.Sections)
	}
	if len(region.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(region.Lines))
	}
}

func TestStitchWithoutMarkerIsEmpty(t *testing.T) {
	region := Stitch(DefaultConfig(), []string{"Sample Name: Soil-7\nVolume: 30 µL"})
	if !region.Empty() {
		t.Fatalf("expected empty region, got %d sections", region.Sections)
	}
	if len(region.Lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(region.Lines))
	}
	if got := Stitch(DefaultConfig(), nil); !got.Empty() {
		t.Fatalf("nil pages should give empty region")
	}
}
