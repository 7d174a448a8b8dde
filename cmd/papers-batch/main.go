package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/joseph-ayodele/papers-extractor/internal/app"
	"github.com/joseph-ayodele/papers-extractor/internal/async"
	"github.com/joseph-ayodele/papers-extractor/internal/common"
	"github.com/joseph-ayodele/papers-extractor/internal/entity"
	"github.com/joseph-ayodele/papers-extractor/internal/export"
	"github.com/joseph-ayodele/papers-extractor/internal/ingest"
	repo "github.com/joseph-ayodele/papers-extractor/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem  = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir    = flag.String("dir", "", "directory to process papers from (required)")
		out    = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		exts   = flag.String("ext", "pdf", "comma separated extensions to pick up")
		prompt = flag.String("prompt", "", "per-page instruction (optional)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "papers.xlsx")
	}

	cfg := common.LoadConfig()
	logger := app.NewLogger(os.Stdout, cfg.LogLevel)

	proc, err := app.Build(cfg, logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath := cfg.SQLite.Path
	if *inmem {
		dbPath = ":memory:"
	}
	store, err := repo.OpenLocalStore(ctx, dbPath, logger)
	if err != nil {
		logger.Error("failed to open local store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close local store", "error", err)
		}
	}()

	paths, failures, stats, err := ingest.ScanDirectory(*dir, ingest.ExtSet(strings.Split(*exts, ",")), true)
	if err != nil {
		logger.Error("failed to scan directory", "error", err)
		os.Exit(1)
	}
	for _, f := range failures {
		logger.Warn("skipped unreadable path", "path", f.Path, "error", f.Err)
	}
	logger.Info("scan complete", "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)

	var processed, failed atomic.Int32
	counter := async.SinkFunc(func(_ context.Context, _ async.Job, _ *entity.Result, err error) {
		if err != nil {
			failed.Add(1)
			return
		}
		processed.Add(1)
	})
	queue := async.NewProcessorQueue(proc, async.FanOut{app.StoreSink(store, logger), counter}, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
	)
	for _, p := range paths {
		if err := queue.Enqueue(ctx, async.Job{Path: p, Source: p, Instruction: *prompt}); err != nil {
			logger.Error("failed to enqueue", "path", p, "error", err)
			break
		}
	}
	queue.Shutdown(ctx)

	logger.Info("exporting to XLSX", "output", *out)
	xlsx, err := export.NewService(store, logger).ExportXLSX(context.Background())
	if err != nil {
		logger.Error("failed to export papers", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"files_matched", len(paths),
		"files_processed", processed.Load(),
		"failures", failed.Load(),
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files matched: %d\n", len(paths))
	fmt.Printf("- Files processed: %d\n", processed.Load())
	fmt.Printf("- Failures: %d\n", failed.Load())
	fmt.Printf("- Output: %s\n", *out)
}
