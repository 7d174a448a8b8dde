package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joseph-ayodele/papers-extractor/internal/app"
	"github.com/joseph-ayodele/papers-extractor/internal/common"
)

func main() {
	var (
		file        = flag.String("file", "", "PDF to extract (required)")
		prompt      = flag.String("prompt", "", "per-page instruction (optional)")
		contentType = flag.String("content-type", "application/pdf", "declared content type of the file")
		withVector  = flag.Bool("embedding", false, "include the embedding vector in the output")
	)
	flag.Parse()

	if *file == "" {
		_, _ = fmt.Fprintln(os.Stderr, "Error: --file is required")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	// logs go to stderr so stdout stays valid JSON
	logger := app.NewLogger(os.Stderr, cfg.LogLevel)

	proc, err := app.Build(cfg, logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Error("failed to read file", "path", *file, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := proc.ProcessPDF(ctx, data, *contentType, filepath.Base(*file), *prompt)
	if err != nil {
		logger.Error("extraction failed", "code", common.ErrorCode(err), "error", err)
		os.Exit(1)
	}
	if !*withVector {
		res.Embedding = nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("failed to write result", "error", err)
		os.Exit(1)
	}
}
