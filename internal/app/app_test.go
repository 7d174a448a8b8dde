package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/papers-extractor/constants"
	"github.com/joseph-ayodele/papers-extractor/internal/async"
	"github.com/joseph-ayodele/papers-extractor/internal/common"
	"github.com/joseph-ayodele/papers-extractor/internal/entity"
	"github.com/joseph-ayodele/papers-extractor/internal/llm/ollama"
	"github.com/joseph-ayodele/papers-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/papers-extractor/internal/render"
	"github.com/joseph-ayodele/papers-extractor/internal/repository"
)

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("EMBEDDING_PROVIDER", "")
	t.Setenv("MAX_ATTEMPTS", "")
	return common.LoadConfig()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewBackendsOpenAI(t *testing.T) {
	cfg := testConfig(t)

	b, err := NewBackends(cfg, quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &openai.Client{}, b.Vision)
	assert.Same(t, b.Vision, b.Text)
	assert.IsType(t, &openai.EmbeddingClient{}, b.Embedder)
}

func TestNewBackendsOllamaSharesClient(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = common.ProviderOllama
	cfg.Embedding.Provider = common.ProviderOllama

	b, err := NewBackends(cfg, quietLogger())
	require.NoError(t, err)
	c, ok := b.Vision.(*ollama.Client)
	require.True(t, ok)
	assert.Same(t, c, b.Text)
	assert.Same(t, c, b.Embedder)
}

func TestNewBackendsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Embedding.Provider = "acme"

	_, err := NewBackends(cfg, quietLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.CodeConfig, appErr.Code)
}

func TestBuildWiresProcessor(t *testing.T) {
	cfg := testConfig(t)

	p, err := Build(cfg, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, p.OCR)
	require.NotNil(t, p.Metadata)
	require.NotNil(t, p.Embed)
	assert.IsType(t, &render.Renderer{}, p.Renderer)
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pipeline.MaxPages = 0

	_, err := Build(cfg, quietLogger())
	require.Error(t, err)
	assert.Equal(t, common.CodeConfig, err.(*common.AppError).Code)
}

func TestNewLoggerDropsTimeAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "debug")
	log.Debug("pipeline.start", "pages", 2)

	assert.Equal(t, "msg=pipeline.start pages=2\n", buf.String())
}

type fakeStaging struct {
	staged []*entity.Result
	err    error
}

func (f *fakeStaging) Stage(_ context.Context, res *entity.Result, _ string) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.staged = append(f.staged, res)
	return uuid.New(), nil
}

func TestStagingSinkSkipsFailures(t *testing.T) {
	staging := &fakeStaging{}
	sink := StagingSink(staging, "test", quietLogger())
	ctx := context.Background()

	sink.Handle(ctx, async.Job{Source: "a.pdf"}, nil, errors.New("boom"))
	sink.Handle(ctx, async.Job{Source: "b.pdf"}, &entity.Result{Source: "b.pdf", Complete: true}, nil)

	require.Len(t, staging.staged, 1)
	assert.Equal(t, "b.pdf", staging.staged[0].Source)
}

func TestStoreSinkRecordsFailures(t *testing.T) {
	ctx := context.Background()
	store, err := repository.OpenLocalStore(ctx, ":memory:", quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sink := StoreSink(store, quietLogger())
	sink.Handle(ctx, async.Job{Source: "bad.pdf"}, nil, common.NewUnsupportedInputError("document has no pages"))
	sink.Handle(ctx, async.Job{Source: "good.pdf"}, &entity.Result{RunID: uuid.New(), Source: "good.pdf", Complete: true}, nil)

	recs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	byStatus := map[constants.JobStatus]string{}
	for _, r := range recs {
		byStatus[r.Status] = r.Source
	}
	assert.Equal(t, "bad.pdf", byStatus[constants.JobStatusFailed])
	assert.Equal(t, "good.pdf", byStatus[constants.JobStatusComplete])
}

func TestNewJSONLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf, "warn")
	log.Info("hidden")
	log.Warn("queue.full", "size", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"queue.full"`)
	assert.Contains(t, out, `"size":3`)
}
