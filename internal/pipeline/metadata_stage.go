package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/papers-extractor/internal/common"
	"github.com/joseph-ayodele/papers-extractor/internal/entity"
	"github.com/joseph-ayodele/papers-extractor/internal/llm"
	"github.com/joseph-ayodele/papers-extractor/internal/metadata"
)

// DefaultMetadataPageCeiling is how many leading pages are ever fed to metadata extraction.
const DefaultMetadataPageCeiling = 5

// MetadataConfig configures progressive context widening.
type MetadataConfig struct {
	PageCeiling int
}

// MetadataOutcome is the result of one extraction pass.
type MetadataOutcome struct {
	Metadata      entity.Metadata
	Raw           string // last raw extraction reply
	MissingFields []string
	Complete      bool
	Calls         int // extraction calls made in this pass
}

// MetadataStage extracts bibliographic metadata, widening the OCR context one page
// at a time until the completeness check passes or the ceiling is reached.
type MetadataStage struct {
	Text   llm.TextGenerator
	Config MetadataConfig
	Logger *slog.Logger
}

func NewMetadataStage(text llm.TextGenerator, cfg MetadataConfig, logger *slog.Logger) *MetadataStage {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PageCeiling <= 0 {
		cfg.PageCeiling = DefaultMetadataPageCeiling
	}
	return &MetadataStage{Text: text, Config: cfg, Logger: logger}
}

// Extract runs one pass. Unparsable replies count as "nothing new"; only backend
// transport failures are returned as errors.
func (s *MetadataStage) Extract(ctx context.Context, pages []entity.PageResult, focus []string, prior entity.Metadata) (MetadataOutcome, error) {
	log := common.LoggerFrom(ctx, s.Logger)
	start := time.Now()

	out := MetadataOutcome{Metadata: metadata.Normalize(prior)}
	limit := min(len(pages), s.Config.PageCeiling)

	for pageCount := 1; pageCount <= limit; pageCount++ {
		ocrText := JoinPageText(pages, pageCount)
		if ocrText == "" {
			continue
		}
		out.Calls++
		log.Debug("metadata.extract.step", "page_count", pageCount, "context_len", len(ocrText), "focus", focus)

		reply, err := s.Text.Generate(ctx, llm.TextRequest{
			SystemPrompt: llm.MetadataExtractionPrompt(ocrText, focus),
			UserPrompt:   llm.MetadataUserPrompt,
		})
		if err != nil {
			log.Error("metadata.extract.call_failed", "page_count", pageCount, "error", err)
			return MetadataOutcome{}, common.NewUpstreamError("metadata extraction call", err)
		}
		out.Raw = strings.TrimSpace(reply)

		obj, err := llm.DecodeObject(out.Raw)
		if err != nil {
			log.Warn("metadata.extract.unparsable", "page_count", pageCount, "error", err,
				"raw_preview", llm.Preview(out.Raw, 200))
			obj = nil
		}
		out.Metadata = metadata.Merge(out.Metadata, metadata.NormalizeRaw(obj))

		merged, err := json.Marshal(out.Metadata)
		if err != nil {
			return MetadataOutcome{}, common.WrapError(err, "encode merged metadata")
		}
		verdict, err := s.Text.Generate(ctx, llm.TextRequest{
			SystemPrompt: llm.CompletenessSystemPrompt(),
			UserPrompt:   llm.CompletenessUserPrompt(ocrText, string(merged)),
		})
		if err != nil {
			log.Error("metadata.oracle.call_failed", "page_count", pageCount, "error", err)
			return MetadataOutcome{}, common.NewUpstreamError("completeness call", err)
		}
		out.Complete = metadata.IsCompleteVerdict(verdict)
		log.Info("metadata.oracle.verdict", "page_count", pageCount, "complete", out.Complete)
		if out.Complete {
			break
		}
	}

	out.MissingFields = metadata.DeriveMissing(out.Metadata, out.Complete)
	log.Info("metadata.extract.ok",
		"calls", out.Calls,
		"complete", out.Complete,
		"missing", out.MissingFields,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
