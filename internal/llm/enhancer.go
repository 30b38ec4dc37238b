package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/nanopore-tracker/constants"
)

// Enhancer adapts a FieldExtractor to the extraction pipeline's gap-filling hook.
type Enhancer struct {
	fx     FieldExtractor
	logger *slog.Logger
}

func NewEnhancer(fx FieldExtractor, logger *slog.Logger) *Enhancer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enhancer{fx: fx, logger: logger}
}

// Enhance returns only the requested keys the model produced.
func (e *Enhancer) Enhance(ctx context.Context, text string, missing []string) (map[string]string, error) {
	start := time.Now()
	fields, _, err := e.fx.ExtractFields(ctx, ExtractRequest{
		Text:               text,
		Missing:            missing,
		AllowedSampleTypes: constants.SampleTypesAsStrings(),
	})
	if err != nil {
		return nil, err
	}
	all := fields.AsMap()
	out := make(map[string]string, len(missing))
	for _, k := range missing {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	e.logger.Debug("llm.enhance.fields",
		"requested", len(missing),
		"returned", len(out),
		"model_confidence", fields.ModelConfidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
