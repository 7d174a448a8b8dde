// Package app builds the extraction pipeline and its backends from common.Config.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/joseph-ayodele/papers-extractor/internal/common"
	"github.com/joseph-ayodele/papers-extractor/internal/llm"
	"github.com/joseph-ayodele/papers-extractor/internal/llm/ollama"
	"github.com/joseph-ayodele/papers-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/papers-extractor/internal/pipeline"
	"github.com/joseph-ayodele/papers-extractor/internal/render"
)

// NewLogger returns a text logger that prints messages with their attributes but no time/level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: common.ParseLogLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// NewJSONLogger returns the structured logger used by long-running processes.
func NewJSONLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: common.ParseLogLevel(level)}))
}

// Backends are the model clients a pipeline needs.
type Backends struct {
	Vision   llm.VisionExtractor
	Text     llm.TextGenerator
	Embedder llm.Embedder
}

// NewBackends picks the vision/text and embedding clients named by the config providers.
func NewBackends(cfg *common.Config, logger *slog.Logger) (Backends, error) {
	var b Backends

	var ollamaClient *ollama.Client
	getOllama := func() (*ollama.Client, error) {
		if ollamaClient != nil {
			return ollamaClient, nil
		}
		c, err := ollama.NewClient(ollama.Config{
			BaseURL:     cfg.LLM.OllamaBaseURL,
			Model:       cfg.LLM.OllamaModel,
			EmbedModel:  cfg.Embedding.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		if err != nil {
			return nil, common.NewAppError(common.CodeConfig, err.Error(), common.ErrInvalidInput)
		}
		ollamaClient = c
		return c, nil
	}

	switch cfg.LLM.Provider {
	case common.ProviderOllama:
		c, err := getOllama()
		if err != nil {
			return b, err
		}
		b.Vision, b.Text = c, c
	case common.ProviderOpenAI, "":
		c := openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			TextModel:   cfg.LLM.TextModel,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		b.Vision, b.Text = c, c
	default:
		return b, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown LLM_PROVIDER %q", cfg.LLM.Provider), common.ErrInvalidInput)
	}

	switch cfg.Embedding.Provider {
	case common.ProviderOllama:
		c, err := getOllama()
		if err != nil {
			return b, err
		}
		b.Embedder = c
	case common.ProviderOpenAI, "":
		b.Embedder = openai.NewEmbeddingClient(openai.EmbeddingConfig{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
			Timeout: cfg.Embedding.Timeout,
		}, logger)
	default:
		return b, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown EMBEDDING_PROVIDER %q", cfg.Embedding.Provider), common.ErrInvalidInput)
	}
	return b, nil
}

// NewProcessor wires the stages and the PDF renderer around the given backends.
func NewProcessor(cfg *common.Config, b Backends, logger *slog.Logger) *pipeline.Processor {
	pc := cfg.Pipeline

	ocrStage := pipeline.NewOCRStage(b.Vision, pipeline.OCRConfig{
		MaxPages:    pc.MaxPages,
		Concurrency: pc.Concurrency,
		PageTimeout: pc.PageTimeout,
	}, logger)
	metaStage := pipeline.NewMetadataStage(b.Text, pipeline.MetadataConfig{
		PageCeiling: pc.MetadataPageCeiling,
	}, logger)
	embedStage := pipeline.NewEmbedStage(b.Embedder, logger)
	renderer := render.NewRenderer(pc.RenderDPI, pc.MaxPages, logger)

	return pipeline.NewProcessor(logger, pipeline.Config{
		MaxAttempts: pc.MaxAttempts,
		Instruction: pc.Instruction,
	}, ocrStage, metaStage, embedStage, renderer)
}

// Build validates cfg and returns a ready processor.
func Build(cfg *common.Config, logger *slog.Logger) (*pipeline.Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b, err := NewBackends(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewProcessor(cfg, b, logger), nil
}
