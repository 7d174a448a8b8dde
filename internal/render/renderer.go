// Package render turns uploaded PDF bytes into PNG page images.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/go-fitz"

	"github.com/joseph-ayodele/papers-extractor/constants"
	"github.com/joseph-ayodele/papers-extractor/internal/common"
)

// DefaultDPI matches a 2x zoom of the 72 DPI PDF user space.
const DefaultDPI = 144

// Renderer rasterizes PDF pages with MuPDF.
type Renderer struct {
	dpi      float64
	maxPages int
	logger   *slog.Logger
}

// NewRenderer builds a renderer. maxPages <= 0 renders every page.
func NewRenderer(dpi float64, maxPages int, logger *slog.Logger) *Renderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{dpi: dpi, maxPages: maxPages, logger: logger}
}

// CheckPDF rejects anything that is not declared (when declared) and sniffed as a PDF.
func CheckPDF(data []byte, contentType string) error {
	if contentType != "" && !constants.IsSupportedPDFContentType(contentType) {
		return common.NewUnsupportedInputError("only PDF files are supported")
	}
	if len(data) == 0 {
		return common.NewUnsupportedInputError("empty document")
	}
	if !mimetype.Detect(data).Is("application/pdf") {
		return common.NewUnsupportedInputError("only PDF files are supported")
	}
	return nil
}

// Render returns one PNG per page in document order.
func (r *Renderer) Render(ctx context.Context, data []byte, contentType string) ([][]byte, error) {
	if err := CheckPDF(data, contentType); err != nil {
		return nil, err
	}
	start := time.Now()

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, common.NewAppError(common.CodeUnsupportedInput, "invalid PDF", fmt.Errorf("%w: %v", common.ErrUnsupportedInput, err))
	}
	defer func() {
		if err := doc.Close(); err != nil {
			r.logger.Warn("render.close_error", "error", err)
		}
	}()

	total := doc.NumPage()
	if total == 0 {
		return nil, common.NewUnsupportedInputError("PDF has no pages")
	}
	n := total
	if r.maxPages > 0 && n > r.maxPages {
		n = r.maxPages
	}

	pages := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(i, r.dpi)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", i+1, err)
		}
		pages = append(pages, buf.Bytes())
	}

	r.logger.Info("render.ok",
		"pages", len(pages),
		"total_pages", total,
		"dpi", r.dpi,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return pages, nil
}
