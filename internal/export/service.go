package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/papers-extractor/internal/ocr"
	"github.com/joseph-ayodele/papers-extractor/internal/repository"
)

// SheetName is the worksheet holding one row per processed document.
const SheetName = "Papers"

// RecordLister is the slice of the local store the export needs.
type RecordLister interface {
	List(ctx context.Context) ([]repository.ExtractionRecord, error)
}

// Service produces XLSX bytes for batch exports.
type Service struct {
	records RecordLister
	logger  *slog.Logger
}

func NewService(records RecordLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

var headers = []string{
	"File",
	"Status",
	"Title",
	"Authors",
	"Journal",
	"Year",
	"Abstract",
	"Missing Fields",
	"Pages",
	"Failed Pages",
	"Error",
}

// ExportXLSX returns a workbook with every stored extraction.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if index, _ := f.GetSheetIndex(SheetName); index == -1 {
		if _, err := f.NewSheet(SheetName); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(SheetName)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}

		write(1, filepath.Base(r.Source))
		write(2, string(r.Status))
		if res := r.Result; res != nil {
			md := res.Metadata
			write(3, md.Title)
			write(4, strings.Join(md.Authors, "; "))
			write(5, md.Journal)
			if md.HasYear() {
				write(6, md.YearValue())
			}
			write(7, truncate(ocr.NormalizeText(md.Abstract), 500))
			write(8, strings.Join(res.MissingFields, ", "))
			write(9, res.PageCount)
			write(10, res.FailedPages())
		}
		write(11, r.Error)
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(SheetName, "A", "A", 28) // file
	_ = f.SetColWidth(SheetName, "B", "B", 12) // status
	_ = f.SetColWidth(SheetName, "C", "C", 48) // title
	_ = f.SetColWidth(SheetName, "D", "E", 32) // authors, journal
	_ = f.SetColWidth(SheetName, "G", "G", 80) // abstract
	_ = f.SetColWidth(SheetName, "H", "H", 24) // missing
	_ = f.SetColWidth(SheetName, "K", "K", 40) // error

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
