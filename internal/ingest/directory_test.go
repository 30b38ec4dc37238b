package ingest

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
)

func TestIngestDirectory(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()
	writeFile(t, root, "a/quote.txt", strings.Join(quotePages(), "\f"))
	writeFile(t, root, "b/single.txt", "Sample Name: Lambda-1\nConcentration: 25\nVolume: 30\n")
	writeFile(t, root, "batch.csv", "Sample,Qubit,Volume\nX1,10,20\n")
	writeFile(t, root, "empty.txt", "\f\f")
	writeFile(t, root, ".hidden/secret.txt", strings.Join(quotePages(), "\f"))
	writeFile(t, root, "notes.docx", "ignored")

	results, stats, err := f.svc.IngestDirectory(context.Background(), DirectoryRequest{Root: root, SkipHidden: true, Workers: 2})
	if err != nil {
		t.Fatalf("IngestDirectory: %v", err)
	}
	if stats.Matched != 4 || stats.Succeeded != 3 || stats.Failed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	counts := map[string]int{}
	for _, r := range results {
		counts[filepath.Base(r.Path)] = r.SampleCount
		if filepath.Base(r.Path) == "empty.txt" && r.ErrorKind != common.KindExtraction {
			t.Errorf("empty.txt kind = %q", r.ErrorKind)
		}
	}
	if counts["quote.txt"] != 95 || counts["single.txt"] != 1 || counts["batch.csv"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestIngestDirectoryFilters(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()
	writeFile(t, root, "one.txt", "Sample Name: A\nConcentration: 1\n")
	writeFile(t, root, "two.csv", "Sample,Qubit\nB,1\n")

	_, stats, err := f.svc.IngestDirectory(context.Background(), DirectoryRequest{Root: root, IncludeExts: []string{".CSV"}})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Scanned != 2 || stats.Matched != 1 || stats.Succeeded != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if _, _, err := f.svc.IngestDirectory(context.Background(), DirectoryRequest{}); common.Kind(err) != common.KindValidation {
		t.Errorf("empty root err = %v", err)
	}
	if _, _, err := f.svc.IngestDirectory(context.Background(), DirectoryRequest{Root: filepath.Join(root, "nope")}); err == nil {
		t.Error("missing root should fail")
	}
}

func TestWatcherEmitsNewFiles(t *testing.T) {
	root := t.TempDir()
	existing := writeFile(t, root, "old.pdf", "x")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 10 * time.Millisecond}, quiet())
	if err != nil {
		t.Fatal(err)
	}
	next := func() string {
		select {
		case p := <-events:
			return p
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for watcher")
			return ""
		}
	}
	if got := next(); got != existing {
		t.Fatalf("initial = %q", got)
	}

	writeFile(t, root, "ignored.docx", "x")
	created := writeFile(t, root, "new.txt", "Sample Name: A\n")
	if got := next(); got != created {
		t.Fatalf("event = %q, want %q", got, created)
	}

	cancel()
	for range events {
	}
}
