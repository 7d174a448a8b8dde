package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/papers-extractor/internal/entity"
)

// Job is one document waiting for the pipeline.
type Job struct {
	Path        string
	Source      string // defaults to Path
	ContentType string // defaults to application/pdf
	Instruction string
	SubmittedAt time.Time
}

// Queue accepts documents for background processing.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Runner is the part of the pipeline the workers call.
type Runner interface {
	ProcessPDF(ctx context.Context, data []byte, contentType, source, instruction string) (*entity.Result, error)
}

// ResultSink receives every finished job, successful or not.
type ResultSink interface {
	Handle(ctx context.Context, job Job, res *entity.Result, err error)
}

// SinkFunc adapts a function to ResultSink.
type SinkFunc func(ctx context.Context, job Job, res *entity.Result, err error)

func (f SinkFunc) Handle(ctx context.Context, job Job, res *entity.Result, err error) {
	f(ctx, job, res, err)
}

// FanOut delivers each result to every sink in order.
type FanOut []ResultSink

func (s FanOut) Handle(ctx context.Context, job Job, res *entity.Result, err error) {
	for _, sink := range s {
		sink.Handle(ctx, job, res, err)
	}
}
