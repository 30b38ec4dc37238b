package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
)

// maxResponseBytes caps a model response. Chat completions for a few document
// fields are a few KB; anything near this is a misbehaving endpoint.
const maxResponseBytes = 4 << 20

// ErrResponseTooLarge is returned when a response body exceeds maxResponseBytes.
var ErrResponseTooLarge = fmt.Errorf("llm response exceeds %d bytes", maxResponseBytes)

// PostJSON posts body as JSON to url and returns the response body and status.
// A non-2xx status is an error, but the body is still returned for logging. The
// caller's request id, when present, is forwarded as X-Request-Id.
func PostJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *slog.Logger) ([]byte, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	requestID := common.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := logger.With("request_id", requestID, "endpoint", url)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("encode llm request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("build llm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	log.Debug("llm.http.request", "payload_bytes", len(payload))
	resp, err := client.Do(req)
	if err != nil {
		log.Warn("llm.http.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, fmt.Errorf("llm request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Debug("llm.http.close_failed", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		log.Warn("llm.http.read_failed", "status", resp.StatusCode, "error", err)
		return nil, resp.StatusCode, fmt.Errorf("read llm response: %w", err)
	}
	if len(raw) > maxResponseBytes {
		log.Warn("llm.http.too_large", "status", resp.StatusCode)
		return nil, resp.StatusCode, ErrResponseTooLarge
	}

	log.Info("llm.http.response",
		"status", resp.StatusCode,
		"response_bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("llm endpoint returned status %d", resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}
