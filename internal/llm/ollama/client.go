package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	ollama "github.com/ollama/ollama/api"

	"github.com/joseph-ayodele/papers-extractor/internal/llm"
)

// Config for an Ollama backend.
type Config struct {
	BaseURL     string // default http://localhost:11434
	Model       string // chat / vision model
	EmbedModel  string // embedding model, defaults to Model
	Temperature float32
	Timeout     time.Duration
}

// Client implements llm.VisionExtractor, llm.TextGenerator and llm.Embedder on the Ollama API.
type Client struct {
	cfg    Config
	api    *ollama.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = cfg.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 300 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}
	api := ollama.NewClient(parsed, &http.Client{Timeout: cfg.Timeout})
	return &Client{cfg: cfg, api: api, logger: logger}, nil
}

// ExtractPage uses /api/chat with the image attached to the user turn.
// Servers without /api/chat (404) are retried once through /api/generate.
func (c *Client) ExtractPage(ctx context.Context, req llm.VisionRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	images := []ollama.ImageData{req.Image}
	out, err := c.chat(ctx, []ollama.Message{
		{Role: "system", Content: req.SystemPrompt},
		{Role: "user", Content: req.UserPrompt, Images: images},
	})
	if err != nil && isNotFound(err) {
		c.logger.Warn("llm.ollama.chat_not_found", "req_id", rid, "fallback", "generate")
		out, err = c.generate(ctx, req.SystemPrompt+" "+req.UserPrompt, images)
	}
	if err != nil {
		c.logger.Error("llm.ollama.vision_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", mapError(err)
	}
	c.logger.Info("llm.ollama.vision.ok", "req_id", rid, "model", c.cfg.Model,
		"content_len", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// Generate runs a text-only chat.
func (c *Client) Generate(ctx context.Context, req llm.TextRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	out, err := c.chat(ctx, []ollama.Message{
		{Role: "system", Content: req.SystemPrompt},
		{Role: "user", Content: req.UserPrompt},
	})
	if err != nil {
		c.logger.Error("llm.ollama.text_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", mapError(err)
	}
	c.logger.Info("llm.ollama.text.ok", "req_id", rid, "model", c.cfg.Model,
		"content_len", len(out), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// Embed calls /api/embed and returns the first vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	resp, err := c.api.Embed(ctx, &ollama.EmbedRequest{
		Model: c.cfg.EmbedModel,
		Input: text,
	})
	if err != nil {
		c.logger.Error("llm.ollama.embed_error", "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, mapError(err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		return nil, &llm.DecodeError{Err: errors.New("no embedding in response")}
	}
	c.logger.Info("llm.ollama.embed.ok", "model", c.cfg.EmbedModel,
		"dims", len(resp.Embeddings[0]), "elapsed_ms", time.Since(start).Milliseconds())
	return resp.Embeddings[0], nil
}

func (c *Client) chat(ctx context.Context, messages []ollama.Message) (string, error) {
	stream := false
	var b strings.Builder
	err := c.api.Chat(ctx, &ollama.ChatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   &stream,
		Options:  map[string]any{"temperature": c.cfg.Temperature},
	}, func(r ollama.ChatResponse) error {
		b.WriteString(r.Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

func (c *Client) generate(ctx context.Context, prompt string, images []ollama.ImageData) (string, error) {
	stream := false
	var b strings.Builder
	err := c.api.Generate(ctx, &ollama.GenerateRequest{
		Model:   c.cfg.Model,
		Prompt:  prompt,
		Images:  images,
		Stream:  &stream,
		Options: map[string]any{"temperature": c.cfg.Temperature},
	}, func(r ollama.GenerateResponse) error {
		b.WriteString(r.Response)
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

func isNotFound(err error) bool {
	var se ollama.StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// mapError converts Ollama status errors into llm.StatusError so callers can classify them.
func mapError(err error) error {
	var se ollama.StatusError
	if errors.As(err, &se) {
		return &llm.StatusError{StatusCode: se.StatusCode, Body: se.ErrorMessage}
	}
	return err
}
