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
)

// maxResponseBytes bounds how much of a backend reply is read.
const maxResponseBytes = 32 << 20

// JSONCall describes one POST to an OpenAI-style endpoint.
type JSONCall struct {
	URL    string
	APIKey string // sent as a Bearer token when set
	ReqID  string // correlates transport logs with the caller's
	Body   any
}

// PostJSON sends call.Body as JSON and decodes the 2xx reply into out.
// Non-2xx replies return *StatusError. A reply that is not valid JSON returns *DecodeError.
func PostJSON(ctx context.Context, client *http.Client, call JSONCall, out any, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 300 * time.Second}
	}
	start := time.Now()

	payload, err := json.Marshal(call.Body)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, call.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if call.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+call.APIKey)
	}

	logger.Debug("llm.http.request", "req_id", call.ReqID, "url", call.URL, "content_length", len(payload))

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("llm.http.send_error", "req_id", call.ReqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("llm.http.response_body_close_error", "req_id", call.ReqID, "error", cerr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	logger.Info("llm.http.response",
		"req_id", call.ReqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Err: err, Raw: string(raw)}
	}
	return nil
}
