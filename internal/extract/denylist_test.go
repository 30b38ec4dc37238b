package extract

import "testing"

func TestDenylistRemovesHeaderFragments(t *testing.T) {
	d := DefaultDenylist()
	for _, label := range []string{
		"ratio",
		"Ratio",
		"Sample Name",
		"sample   name volume",
		"Qubit",
		"Nanodrop (ng/µL)",
		"Volume (uL)",
		"A260/280",
		"260/230",
		"ng/ul",
		"#",
		"uL",
	} {
		if header, _ := d.IsHeader(label); !header {
			t.Errorf("IsHeader(%q) = false, want true", label)
		}
	}
}

func TestDenylistKeepsKnownGoodLabels(t *testing.T) {
	d := DefaultDenylist()
	for _, label := range []string{
		"S-001",
		"12",
		"Ecoli K12 rep 2",
		"HMW-DNA-3",
		"Culture 3",
		"Ultra-5",
		"Sample 12",
		"Name-Tag 4",
		"BLANK",
		"Positive control",
		"Soil_2024_07",
		"NA12878",
	} {
		if header, why := d.IsHeader(label); header {
			t.Errorf("IsHeader(%q) = true (%s), want false", label, why)
		}
	}
}

func TestDenylistNearMiss(t *testing.T) {
	d := DefaultDenylist()
	tests := map[string]string{
		"Sample 12":     "sample",
		"Volumetric-1":  "volume",
		"S-001":         "",
		"Culture 3":     "",
		"Total RNA 7":   "total",
		"Ratiometric 2": "ratio",
	}
	for label, want := range tests {
		if got := d.NearMissOf(label); got != want {
			t.Errorf("NearMissOf(%q) = %q, want %q", label, got, want)
		}
	}
}
