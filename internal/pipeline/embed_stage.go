package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/papers-extractor/internal/common"
	"github.com/joseph-ayodele/papers-extractor/internal/llm"
)

// EmbedStage embeds the final title and abstract.
type EmbedStage struct {
	Embedder llm.Embedder
	Logger   *slog.Logger
}

func NewEmbedStage(embedder llm.Embedder, logger *slog.Logger) *EmbedStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbedStage{Embedder: embedder, Logger: logger}
}

// EmbeddingText is title and abstract separated by a blank line, trimmed.
func EmbeddingText(title, abstract string) string {
	return strings.TrimSpace(title + "\n\n" + abstract)
}

// Embed fails with ErrEmptyInput when there is nothing to embed.
func (s *EmbedStage) Embed(ctx context.Context, title, abstract string) ([]float32, error) {
	log := common.LoggerFrom(ctx, s.Logger)
	text := EmbeddingText(title, abstract)
	if text == "" {
		log.Error("embed.empty_input")
		return nil, common.NewEmptyInputError("title and abstract are both empty")
	}

	start := time.Now()
	vec, err := s.Embedder.Embed(ctx, text)
	if err != nil {
		log.Error("embed.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewUpstreamError("embedding call", err)
	}
	log.Info("embed.ok", "dims", len(vec), "text_len", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return vec, nil
}
