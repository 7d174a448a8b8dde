package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/joseph-ayodele/papers-extractor/internal/llm"
)

// fakeVision answers per page number; pages without a handler echo "page N".
type fakeVision struct {
	pages   map[int]func(ctx context.Context) (string, error)
	calls   atomic.Int32
	mu      sync.Mutex
	prompts []string
}

func (f *fakeVision) ExtractPage(ctx context.Context, req llm.VisionRequest) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.prompts = append(f.prompts, req.UserPrompt)
	f.mu.Unlock()

	var page int
	if _, err := fmt.Sscanf(req.UserPrompt, "Page %d:", &page); err != nil {
		return "", err
	}
	if h, ok := f.pages[page]; ok {
		return h(ctx)
	}
	return fmt.Sprintf(`{"text": "page %d", "tables": [], "images": []}`, page), nil
}

// blockUntilDone simulates a backend that never answers before the deadline.
func blockUntilDone(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// fakeText routes completeness prompts to verdicts and everything else to extractions.
type fakeText struct {
	mu          sync.Mutex
	extractions []string // replayed in order; the last one repeats
	verdicts    []string // replayed in order; the last one repeats
	err         error
	extractReqs []llm.TextRequest
	oracleReqs  []llm.TextRequest
}

func (f *fakeText) Generate(_ context.Context, req llm.TextRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if req.SystemPrompt == llm.CompletenessSystemPrompt() {
		f.oracleReqs = append(f.oracleReqs, req)
		return pick(f.verdicts, len(f.oracleReqs)-1, "incomplete"), nil
	}
	f.extractReqs = append(f.extractReqs, req)
	return pick(f.extractions, len(f.extractReqs)-1, "{}"), nil
}

func (f *fakeText) extractCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.extractReqs)
}

func pick(list []string, i int, def string) string {
	switch {
	case len(list) == 0:
		return def
	case i < len(list):
		return list[i]
	default:
		return list[len(list)-1]
	}
}

type fakeEmbedder struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(strings.Fields(text))), 0.5}, nil
}

type fakeRenderer struct {
	pages [][]byte
	err   error
}

func (f fakeRenderer) Render(_ context.Context, _ []byte, _ string) ([][]byte, error) {
	return f.pages, f.err
}

func pageImages(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte(fmt.Sprintf("img-%d", i+1))
	}
	return out
}
