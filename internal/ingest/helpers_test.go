package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joseph-ayodele/nanopore-tracker/internal/extract"
	"github.com/joseph-ayodele/nanopore-tracker/internal/pagetext"
	"github.com/joseph-ayodele/nanopore-tracker/internal/repository"
	"github.com/joseph-ayodele/nanopore-tracker/internal/tabular"
)

const header = "#   Sample Name   Volume (µL)   Qubit (ng/µL)   Nanodrop (ng/µL)   A260/280   A260/230"

const preamble = `Nanopore Sequencing Quote
Submitter Name: Jane Doe
Email: jane.doe@example.edu
Lab: Doe Lab
Type of Sample: HMW DNA`

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func tablePage(pre string, first, last int, footer string) string {
	var b strings.Builder
	if pre != "" {
		b.WriteString(pre + "\n")
	}
	b.WriteString(header + "\n")
	for i := first; i <= last; i++ {
		fmt.Fprintf(&b, "%d   S-%03d   20   %.1f   %.1f   1.85   2.05\n", i, i, 10+float64(i%7), 12+float64(i%7))
	}
	b.WriteString(footer)
	return b.String()
}

// quotePages is the 95-sample, two-page quote form.
func quotePages() []string {
	return []string{
		tablePage(preamble, 1, 43, "Page 1 of 2\n"),
		tablePage("", 44, 94, "95   BLANK\nPage 2 of 2\n"),
	}
}

type fixture struct {
	db      *repository.DB
	subs    repository.SubmissionRepository
	samples repository.SampleRepository
	svc     *Service
}

func newFixture(t *testing.T, opts ...extract.Option) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "ingest.db")}, quiet())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	cfg := extract.DefaultConfig()
	f := &fixture{
		db:      db,
		subs:    repository.NewSubmissionRepository(db, quiet()),
		samples: repository.NewSampleRepository(db, quiet()),
	}
	pipeline := extract.NewPipeline(cfg, append([]extract.Option{extract.WithLogger(quiet())}, opts...)...)
	f.svc = NewService(f.subs, f.samples, pipeline, quiet(),
		WithPageSource(pagetext.NewSource(pagetext.Config{}, quiet())),
		WithSheetReader(tabular.NewReader(cfg, quiet())),
	)
	return f
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}
