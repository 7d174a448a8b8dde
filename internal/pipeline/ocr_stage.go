package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/papers-extractor/internal/common"
	"github.com/joseph-ayodele/papers-extractor/internal/entity"
	"github.com/joseph-ayodele/papers-extractor/internal/llm"
	"github.com/joseph-ayodele/papers-extractor/internal/ocr"
)

// OCRConfig bounds the per-page fan-out.
type OCRConfig struct {
	MaxPages    int           // pages beyond this are dropped before dispatch
	Concurrency int           // default in-flight limit
	PageTimeout time.Duration // per-call timeout, 0 disables
}

// OCRStage runs the vision backend over every page and never fails as a whole.
type OCRStage struct {
	Vision llm.VisionExtractor
	Config OCRConfig
	Logger *slog.Logger
}

func NewOCRStage(vision llm.VisionExtractor, cfg OCRConfig, logger *slog.Logger) *OCRStage {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}
	return &OCRStage{Vision: vision, Config: cfg, Logger: logger}
}

// Run extracts every page (after the max-page cap) with at most concurrencyLimit calls in flight.
// A limit <= 0 uses the configured default. The result has one entry per page, in page order.
func (s *OCRStage) Run(ctx context.Context, pages [][]byte, instruction string, concurrencyLimit int) []entity.PageResult {
	log := common.LoggerFrom(ctx, s.Logger)
	if s.Config.MaxPages > 0 && len(pages) > s.Config.MaxPages {
		log.Warn("ocr.pages.capped", "pages", len(pages), "max_pages", s.Config.MaxPages)
		pages = pages[:s.Config.MaxPages]
	}
	results := make([]entity.PageResult, len(pages))
	if len(pages) == 0 {
		return results
	}
	if concurrencyLimit <= 0 {
		concurrencyLimit = s.Config.Concurrency
	}

	start := time.Now()
	var g errgroup.Group
	g.SetLimit(concurrencyLimit)
	for i, img := range pages {
		g.Go(func() error {
			results[i] = s.extractPage(ctx, log, i+1, img, instruction)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	log.Info("ocr.run.ok",
		"pages", len(results),
		"failed", failed,
		"concurrency", concurrencyLimit,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return results
}

func (s *OCRStage) extractPage(ctx context.Context, log *slog.Logger, page int, img []byte, instruction string) entity.PageResult {
	start := time.Now()
	log = log.With("page", page)

	callCtx := ctx
	if s.Config.PageTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.Config.PageTimeout)
		defer cancel()
	}

	log.Debug("ocr.page.start", "image_bytes", len(img))
	raw, err := s.Vision.ExtractPage(callCtx, llm.VisionRequest{
		SystemPrompt: llm.PageSystemPrompt(),
		UserPrompt:   llm.PageUserPrompt(page, instruction),
		Image:        img,
	})
	if err != nil {
		category := llm.Classify(err)
		log.Warn("ocr.page.failed",
			"category", category,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return failedPage(page, category, err.Error(), llm.RawPreview(err))
	}

	content := ocr.ParseContent(raw)
	if content.Mode != entity.ParseModeJSON {
		log.Warn("ocr.page.malformed", "mode", content.Mode, "raw_preview", llm.Preview(raw, 200))
	}
	log.Info("ocr.page.ok",
		"mode", content.Mode,
		"text_len", len(content.Text),
		"tables", len(content.Tables),
		"images", len(content.Images),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return entity.PageResult{
		Page:   page,
		Text:   content.Text,
		Tables: content.Tables,
		Images: content.Images,
		Parse:  content.Mode,
	}
}

func failedPage(page int, category entity.PageErrorCategory, message, preview string) entity.PageResult {
	return entity.PageResult{
		Page:   page,
		Tables: []entity.Table{},
		Images: []string{},
		Error: &entity.PageError{
			Category:   category,
			Message:    message,
			RawPreview: preview,
		},
	}
}

// JoinPageText joins the trimmed, non-empty texts of the first n pages with blank lines.
// n <= 0 means all pages.
func JoinPageText(pages []entity.PageResult, n int) string {
	if n <= 0 || n > len(pages) {
		n = len(pages)
	}
	snippets := make([]string, 0, n)
	for _, p := range pages[:n] {
		if t := strings.TrimSpace(p.Text); t != "" {
			snippets = append(snippets, t)
		}
	}
	return strings.Join(snippets, "\n\n")
}
