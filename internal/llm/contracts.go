package llm

import "context"

// VisionRequest is one page image plus the instructions sent with it.
type VisionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Image        []byte
	MimeType     string // defaults to the sniffed type, usually image/png
}

// TextRequest is a text-only generation call.
type TextRequest struct {
	SystemPrompt string
	UserPrompt   string
}

// VisionExtractor sends a page image to a vision-capable model and returns the raw reply.
// The reply should be JSON but nothing guarantees it.
type VisionExtractor interface {
	ExtractPage(ctx context.Context, req VisionRequest) (string, error)
}

// TextGenerator returns the raw reply of a text-generation model.
type TextGenerator interface {
	Generate(ctx context.Context, req TextRequest) (string, error)
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
