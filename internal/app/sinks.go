package app

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/papers-extractor/internal/async"
	"github.com/joseph-ayodele/papers-extractor/internal/entity"
	"github.com/joseph-ayodele/papers-extractor/internal/repository"
)

// StoreSink records every finished job, including failures, in the local store.
func StoreSink(store *repository.LocalStore, logger *slog.Logger) async.ResultSink {
	if logger == nil {
		logger = slog.Default()
	}
	return async.SinkFunc(func(ctx context.Context, job async.Job, res *entity.Result, err error) {
		rec, saveErr := store.Save(ctx, job.Source, res, err)
		if saveErr != nil {
			logger.Error("sink.store.failed", "source", job.Source, "error", saveErr)
			return
		}
		logger.Debug("sink.store.ok", "source", job.Source, "id", rec.ID, "status", rec.Status)
	})
}

// StagingSink inserts successful results into the staging table. Failed jobs are skipped.
func StagingSink(staging repository.StagingRepository, ingestionSource string, logger *slog.Logger) async.ResultSink {
	if logger == nil {
		logger = slog.Default()
	}
	return async.SinkFunc(func(ctx context.Context, job async.Job, res *entity.Result, err error) {
		if err != nil || res == nil {
			return
		}
		id, stageErr := staging.Stage(ctx, res, ingestionSource)
		if stageErr != nil {
			logger.Error("sink.staging.failed", "source", job.Source, "error", stageErr)
			return
		}
		logger.Info("sink.staging.ok", "source", job.Source, "id", id)
	})
}
