package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/papers-extractor/internal/llm"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL, Model: "qwen-vl", EmbedModel: "embed", Timeout: 5 * time.Second}, nil)
	require.NoError(t, err)
	return c
}

func TestExtractPageChat(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qwen-vl", req["model"])
		msgs := req["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.NotEmpty(t, msgs[1].(map[string]any)["images"])
		_, _ = w.Write([]byte(`{"model":"qwen-vl","message":{"role":"assistant","content":"{\"text\":\"chat\"}"},"done":true}` + "\n"))
	})
	c := newTestClient(t, mux)

	out, err := c.ExtractPage(context.Background(), llm.VisionRequest{SystemPrompt: "sys", UserPrompt: "Page 1: go", Image: []byte("img")})
	require.NoError(t, err)
	assert.Equal(t, `{"text":"chat"}`, out)
}

func TestExtractPageFallsBackToGenerate(t *testing.T) {
	var generateCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", http.NotFound)
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		generateCalls.Add(1)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sys Page 1: go", req["prompt"])
		_, _ = w.Write([]byte(`{"model":"qwen-vl","response":"{\"text\":\"generated\"}","done":true}` + "\n"))
	})
	c := newTestClient(t, mux)

	out, err := c.ExtractPage(context.Background(), llm.VisionRequest{SystemPrompt: "sys", UserPrompt: "Page 1: go", Image: []byte("img")})
	require.NoError(t, err)
	assert.Equal(t, `{"text":"generated"}`, out)
	assert.Equal(t, int32(1), generateCalls.Load())
}

func TestStatusErrorsAreMapped(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal failure", http.StatusInternalServerError)
	})
	c := newTestClient(t, mux)

	_, err := c.Generate(context.Background(), llm.TextRequest{UserPrompt: "u"})
	var se *llm.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
}

func TestEmbed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/embed", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "embed", req["model"])
		_, _ = w.Write([]byte(`{"model":"embed","embeddings":[[0.25,0.5]]}`))
	})
	c := newTestClient(t, mux)

	vec, err := c.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 0.5}, vec)
}
