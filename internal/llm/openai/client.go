package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/papers-extractor/internal/llm"
)

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractPage sends one page image with the system and user prompts.
func (c *Client) ExtractPage(ctx context.Context, req llm.VisionRequest) (string, error) {
	mimeType := llm.ImageMimeType(req.MimeType, req.Image)
	messages := []map[string]any{
		{"role": "system", "content": req.SystemPrompt},
		{"role": "user", "content": []map[string]any{
			{"type": "text", "text": req.UserPrompt},
			{"type": "image_url", "image_url": map[string]any{"url": llm.DataURL(mimeType, req.Image)}},
		}},
	}
	return c.chat(ctx, "llm.vision", c.cfg.Model, messages, len(req.Image))
}

// Generate runs a text-only chat completion.
func (c *Client) Generate(ctx context.Context, req llm.TextRequest) (string, error) {
	messages := []map[string]any{
		{"role": "system", "content": req.SystemPrompt},
		{"role": "user", "content": req.UserPrompt},
	}
	return c.chat(ctx, "llm.text", c.cfg.TextModel, messages, 0)
}

func (c *Client) chat(ctx context.Context, event, model string, messages []map[string]any, imageBytes int) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Debug(event+".start",
		"req_id", rid,
		"model", model,
		"temp", c.cfg.Temperature,
		"image_bytes", imageBytes,
	)

	var cc chatResponse
	err := llm.PostJSON(ctx, c.http, llm.JSONCall{
		URL:    c.cfg.BaseURL + "/chat/completions",
		APIKey: c.cfg.APIKey,
		ReqID:  rid,
		Body: map[string]any{
			"model":       model,
			"temperature": c.cfg.Temperature,
			"stream":      false,
			"messages":    messages,
		},
	}, &cc, c.logger)
	if err != nil {
		c.logger.Error(event+".failed",
			"req_id", rid, "error", err, "category", llm.Classify(err),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}
	if len(cc.Choices) == 0 {
		c.logger.Error(event+".no_choices", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", &llm.DecodeError{Err: errors.New("no choices in response")}
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.logger.Info(event+".ok",
		"req_id", rid,
		"model", model,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
