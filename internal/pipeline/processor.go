package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/papers-extractor/internal/common"
	"github.com/joseph-ayodele/papers-extractor/internal/entity"
)

// PageRenderer turns an uploaded document into ordered page images.
type PageRenderer interface {
	Render(ctx context.Context, data []byte, contentType string) ([][]byte, error)
}

// Config holds orchestrator defaults applied when a job leaves them unset.
type Config struct {
	MaxAttempts int    // extraction passes for jobs without a budget; <= 0 means DefaultMaxAttempts
	Instruction string // page instruction for jobs without one
}

// Processor coordinates OCR, then metadata extraction with retries, then embedding.
// It keeps no per-run state, so one Processor serves concurrent runs.
type Processor struct {
	Logger   *slog.Logger
	OCR      *OCRStage
	Metadata *MetadataStage
	Embed    *EmbedStage
	Renderer PageRenderer
	cfg      Config
}

func NewProcessor(logger *slog.Logger, cfg Config, ocr *OCRStage, meta *MetadataStage, embed *EmbedStage, renderer PageRenderer) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Processor{Logger: logger, OCR: ocr, Metadata: meta, Embed: embed, Renderer: renderer, cfg: cfg}
}

// Run executes the pipeline for one job. Documents without pages are rejected before any backend call.
func (p *Processor) Run(ctx context.Context, job entity.DocumentJob) (*entity.Result, error) {
	if len(job.Pages) == 0 {
		return nil, common.NewUnsupportedInputError("document has no pages")
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Instruction == "" {
		job.Instruction = p.cfg.Instruction
	}
	maxAttempts := job.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = p.cfg.MaxAttempts
	}

	ctx = common.WithRunID(ctx, job.ID.String())
	if job.Source != "" {
		ctx = common.WithSource(ctx, job.Source)
	}
	log := common.LoggerFrom(ctx, p.Logger)
	start := time.Now()

	// 1) OCR stage, per-page failures stay inside the results
	pages := p.OCR.Run(ctx, job.Pages, job.Instruction, 0)
	log.Info("processor.ocr.ok", "pages", len(pages))

	// 2) metadata extraction under the retry controller
	ctrl := NewRetryController(job.Attempts, maxAttempts, log)
	outcome, err := ctrl.Drive(ctx, func(ctx context.Context, focus []string, prior entity.Metadata) (MetadataOutcome, error) {
		return p.Metadata.Extract(ctx, pages, focus, prior)
	})
	if err != nil {
		log.Error("processor.metadata.failed", "error", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, common.NewUpstreamError("run cancelled", err)
		}
		return nil, err
	}
	log.Info("processor.metadata.ok",
		"complete", outcome.Complete,
		"attempts", ctrl.Attempts(),
		"missing", outcome.MissingFields,
	)

	// 3) embedding of the final metadata
	vec, err := p.Embed.Embed(ctx, outcome.Metadata.Title, outcome.Metadata.Abstract)
	if err != nil {
		log.Error("processor.embed.failed", "error", err, "code", common.ErrorCode(err))
		return nil, err
	}

	res := &entity.Result{
		RunID:         job.ID,
		Source:        job.Source,
		Pages:         pages,
		PageCount:     len(pages),
		OCRText:       JoinPageText(pages, 0),
		Metadata:      outcome.Metadata,
		RawMetadata:   outcome.Raw,
		MissingFields: outcome.MissingFields,
		Complete:      outcome.Complete,
		Attempts:      ctrl.Attempts(),
		Embedding:     vec,
	}
	log.Info("processor.run.ok",
		"pages", res.PageCount,
		"failed_pages", res.FailedPages(),
		"complete", res.Complete,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// ProcessPDF renders an uploaded document and runs the pipeline on its pages.
func (p *Processor) ProcessPDF(ctx context.Context, data []byte, contentType, source, instruction string) (*entity.Result, error) {
	if p.Renderer == nil {
		return nil, common.NewAppError(common.CodeConfig, "no page renderer configured", common.ErrInvalidInput)
	}
	pages, err := p.Renderer.Render(ctx, data, contentType)
	if err != nil {
		p.Logger.Warn("processor.render.failed", "source", source, "error", err)
		return nil, err
	}
	return p.Run(ctx, entity.DocumentJob{
		ID:          uuid.New(),
		Source:      source,
		Pages:       pages,
		Instruction: instruction,
	})
}
