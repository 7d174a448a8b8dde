package openai

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/papers-extractor/internal/llm"
)

// Embed returns the first embedding of the /embeddings reply.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	rid := uuid.New().String()
	start := time.Now()

	var er struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	err := llm.PostJSON(ctx, c.http, llm.JSONCall{
		URL:    c.cfg.BaseURL + "/embeddings",
		APIKey: c.cfg.APIKey,
		ReqID:  rid,
		Body:   map[string]any{"model": c.cfg.Model, "input": text},
	}, &er, c.logger)
	if err != nil {
		c.logger.Error("llm.embed.failed", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	if len(er.Data) == 0 || len(er.Data[0].Embedding) == 0 {
		return nil, &llm.DecodeError{Err: errors.New("no embedding in response")}
	}

	c.logger.Info("llm.embed.ok",
		"req_id", rid,
		"model", c.cfg.Model,
		"dims", len(er.Data[0].Embedding),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return er.Data[0].Embedding, nil
}
