package common

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend providers understood by the client factories.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds all application configuration
type Config struct {
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Pipeline  PipelineConfig
	Database  DatabaseConfig
	SQLite    SQLiteConfig
	Server    ServerConfig
	Ingest    IngestConfig
	Queue     QueueConfig
	LogLevel  string
}

// LLMConfig holds the vision and text generation backend configuration
type LLMConfig struct {
	Provider      string
	BaseURL       string // OpenAI-compatible base, e.g. http://host:8000/v1
	APIKey        string
	Model         string // vision model
	TextModel     string // text generation model; falls back to Model
	Temperature   float32
	Timeout       time.Duration
	OllamaBaseURL string
	OllamaModel   string
}

// EmbeddingConfig holds embedding backend configuration
type EmbeddingConfig struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// PipelineConfig holds extraction pipeline knobs
type PipelineConfig struct {
	MaxPages            int
	Concurrency         int
	MetadataPageCeiling int
	MaxAttempts         int
	PageTimeout         time.Duration
	RenderDPI           float64
	Instruction         string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// SQLiteConfig holds the local result store configuration
type SQLiteConfig struct {
	Path string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// IngestConfig holds inbox watching configuration
type IngestConfig struct {
	WatchDir string
	Debounce time.Duration
	Source   string // recorded as ingestion_source on staged rows
}

// QueueConfig holds worker pool configuration
type QueueConfig struct {
	Workers        int
	Size           int
	ProcessTimeout time.Duration
}

// LoadConfig loads configuration from environment variables.
// A .env file (or ENV_FILE) is read first when present; real env vars win.
func LoadConfig() *Config {
	loadDotEnv(getEnv("ENV_FILE", ".env"))

	model := getEnv("VLLM_MODEL", "Qwen/Qwen2.5-VL-7B-Instruct")
	return &Config{
		LLM: LLMConfig{
			Provider:      strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
			BaseURL:       getEnv("VLLM_BASE_URL", "http://localhost:8000/v1"),
			APIKey:        getEnv("VLLM_API_KEY", "EMPTY"),
			Model:         model,
			TextModel:     getEnv("TEXT_MODEL", model),
			Temperature:   getEnvAsFloat32("VLLM_TEMPERATURE", 0.2),
			Timeout:       getEnvAsDuration("VLLM_TIMEOUT", 300*time.Second),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:   getEnv("OLLAMA_MODEL", "qwen2.5vl:7b"),
		},
		Embedding: EmbeddingConfig{
			Provider: strings.ToLower(getEnv("EMBEDDING_PROVIDER", ProviderOpenAI)),
			BaseURL:  getEnv("EMBEDDING_BASE_URL", "http://localhost:8001/v1"),
			APIKey:   getEnv("EMBEDDING_API_KEY", "EMPTY"),
			Model:    getEnv("EMBEDDING_MODEL", "BAAI/bge-m3"),
			Timeout:  getEnvAsDuration("EMBEDDING_TIMEOUT", 60*time.Second),
		},
		Pipeline: PipelineConfig{
			MaxPages:            getEnvAsInt("MAX_PAGES", 10),
			Concurrency:         getEnvAsInt("OCR_CONCURRENCY", 10),
			MetadataPageCeiling: getEnvAsInt("METADATA_PAGE_CEILING", 5),
			MaxAttempts:         getEnvAsInt("MAX_ATTEMPTS", 1),
			PageTimeout:         getEnvAsDuration("PAGE_TIMEOUT", 300*time.Second),
			RenderDPI:           getEnvAsFloat64("RENDER_DPI", 144),
			Instruction:         getEnv("OCR_INSTRUCTION", ""),
		},
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "./papers.db"),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Ingest: IngestConfig{
			WatchDir: getEnv("WATCH_DIR", ""),
			Debounce: getEnvAsDuration("WATCH_DEBOUNCE", 2*time.Second),
			Source:   getEnv("INGESTION_SOURCE", "papersd"),
		},
		Queue: QueueConfig{
			Workers:        getEnvAsInt("WORKERS", 2),
			Size:           getEnvAsInt("QUEUE_SIZE", 64),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 15*time.Minute),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config.dotenv.load_failed", "path", path, "error", err)
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ParseLogLevel maps LOG_LEVEL values onto slog levels, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("LLM_PROVIDER", c.LLM.Provider, OneOf(ProviderOpenAI, ProviderOllama))
	v.Field("EMBEDDING_PROVIDER", c.Embedding.Provider, OneOf(ProviderOpenAI, ProviderOllama))

	if c.LLM.Provider == ProviderOllama {
		v.Field("OLLAMA_BASE_URL", c.LLM.OllamaBaseURL, Required, AbsoluteURL)
		v.Field("OLLAMA_MODEL", c.LLM.OllamaModel, Required)
	} else {
		v.Field("VLLM_BASE_URL", c.LLM.BaseURL, Required, AbsoluteURL)
		v.Field("VLLM_MODEL", c.LLM.Model, Required)
	}
	if c.Embedding.Provider == ProviderOllama {
		v.Field("OLLAMA_BASE_URL", c.LLM.OllamaBaseURL, Required, AbsoluteURL)
	} else {
		v.Field("EMBEDDING_BASE_URL", c.Embedding.BaseURL, Required, AbsoluteURL)
	}
	v.Field("EMBEDDING_MODEL", c.Embedding.Model, Required)

	v.Field("MAX_PAGES", c.Pipeline.MaxPages, MinInt(1))
	v.Field("OCR_CONCURRENCY", c.Pipeline.Concurrency, MinInt(1))
	v.Field("METADATA_PAGE_CEILING", c.Pipeline.MetadataPageCeiling, MinInt(1))
	v.Field("MAX_ATTEMPTS", c.Pipeline.MaxAttempts, MinInt(0))
	v.Field("PAGE_TIMEOUT", c.Pipeline.PageTimeout, PositiveDuration)
	v.Field("VLLM_TIMEOUT", c.LLM.Timeout, PositiveDuration)
	v.Field("EMBEDDING_TIMEOUT", c.Embedding.Timeout, PositiveDuration)

	return v.Err()
}

// ValidateDatabase checks the settings needed by binaries that write to Postgres.
func (c *Config) ValidateDatabase() error {
	if c.Database.DSN == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrInvalidInput)
	}
	return nil
}
