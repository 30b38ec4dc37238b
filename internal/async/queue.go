package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
)

// Job is one file waiting to be ingested.
type Job struct {
	Path        string
	Priority    constants.Priority
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Handler processes one job. Errors are logged by the queue, never retried.
type Handler func(ctx context.Context, job Job) error
