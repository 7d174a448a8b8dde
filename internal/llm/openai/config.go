package openai

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// Config for an OpenAI-compatible (vLLM) chat backend.
type Config struct {
	APIKey      string        // if empty, falls back to env VLLM_API_KEY, then "EMPTY"
	BaseURL     string        // default http://localhost:8000/v1
	Model       string        // vision model
	TextModel   string        // text model, defaults to Model
	Temperature float32       // 0..2
	Timeout     time.Duration // http client timeout
}

// Client talks to /chat/completions. It implements llm.VisionExtractor and llm.TextGenerator.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("VLLM_API_KEY")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = "EMPTY"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.TextModel == "" {
		cfg.TextModel = cfg.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 300 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// EmbeddingConfig for an OpenAI-compatible /embeddings backend.
type EmbeddingConfig struct {
	APIKey  string
	BaseURL string // default http://localhost:8001/v1
	Model   string
	Timeout time.Duration
}

// EmbeddingClient implements llm.Embedder over /embeddings.
type EmbeddingClient struct {
	cfg    EmbeddingConfig
	http   *http.Client
	logger *slog.Logger
}

func NewEmbeddingClient(cfg EmbeddingConfig, logger *slog.Logger) *EmbeddingClient {
	if cfg.APIKey == "" {
		cfg.APIKey = "EMPTY"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8001/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}
