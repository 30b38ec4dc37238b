package extract

import (
	"sort"
	"strings"
)

// RegionLine is one line of the stitched table with the 1-based page it came from.
type RegionLine struct {
	Page int
	Text string
}

// Region is the logical table assembled from every header-marker section.
type Region struct {
	Sections int
	Lines    []RegionLine
}

func (r Region) Empty() bool { return r.Sections == 0 }

// Text joins the region lines with newlines.
func (r Region) Text() string {
	parts := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

// Stitch finds every occurrence of cfg.HeaderMarker across the concatenated pages.
// Each occurrence opens a section that runs until the next occurrence or the end of
// the document; the section bodies are joined in document order. No marker means an
// empty region.
func Stitch(cfg Config, pages []string) Region {
	if cfg.HeaderMarker == nil || len(pages) == 0 {
		return Region{}
	}

	var b strings.Builder
	starts := make([]int, len(pages)) // byte offset where each page begins
	for i, p := range pages {
		if i > 0 {
			b.WriteByte('\n')
		}
		starts[i] = b.Len()
		b.WriteString(p)
	}
	doc := b.String()

	locs := cfg.HeaderMarker.FindAllStringIndex(doc, -1)
	if len(locs) == 0 {
		return Region{}
	}

	pageAt := func(off int) int {
		// first page whose start is beyond off, minus one
		return sort.Search(len(starts), func(i int) bool { return starts[i] > off })
	}

	region := Region{Sections: len(locs)}
	for i, loc := range locs {
		end := len(doc)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		off := loc[1]
		body := doc[off:end]
		for _, line := range strings.Split(body, "\n") {
			lineStart := off
			off += len(line) + 1
			if strings.TrimSpace(line) == "" {
				continue
			}
			region.Lines = append(region.Lines, RegionLine{Page: pageAt(lineStart), Text: line})
		}
	}
	return region
}
