package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/papers-extractor/internal/entity"
)

// Decision is the retry controller's transition out of an extraction pass.
type Decision string

const (
	DecisionRetry Decision = "retry"
	DecisionEnd   Decision = "end"
)

// DefaultMaxAttempts is the pass budget when a job does not set one: a single pass, no retry.
const DefaultMaxAttempts = 1

// ShouldRetry returns retry iff the pass was incomplete and budget remains.
func ShouldRetry(complete bool, attempts, maxAttempts int) Decision {
	if !complete && attempts < maxAttempts {
		return DecisionRetry
	}
	return DecisionEnd
}

// ExtractFunc runs one metadata pass with the given focus over the prior merge state.
type ExtractFunc func(ctx context.Context, focus []string, prior entity.Metadata) (MetadataOutcome, error)

// RetryController owns the merge state of one run. It is not safe for concurrent use.
// The attempt counter includes the pass in progress, so maxAttempts bounds the total passes.
type RetryController struct {
	attempts    int
	maxAttempts int
	focus       []string
	state       entity.Metadata
	last        MetadataOutcome
	logger      *slog.Logger
}

// NewRetryController starts at pass prior+1, where prior counts passes already spent on the job.
func NewRetryController(prior, maxAttempts int, logger *slog.Logger) *RetryController {
	if logger == nil {
		logger = slog.Default()
	}
	if prior < 0 {
		prior = 0
	}
	return &RetryController{attempts: prior + 1, maxAttempts: maxAttempts, logger: logger}
}

func (c *RetryController) Attempts() int { return c.attempts }
func (c *RetryController) Focus() []string { return c.focus }
func (c *RetryController) State() entity.Metadata { return c.state.Clone() }
func (c *RetryController) Last() MetadataOutcome { return c.last }
func (c *RetryController) Next() Decision { return ShouldRetry(c.last.Complete, c.attempts, c.maxAttempts) }

// Record stores a finished pass; its metadata becomes the merge state.
func (c *RetryController) Record(out MetadataOutcome) {
	c.last = out
	c.state = out.Metadata
}

// PrepareRetry bumps the attempt counter and focuses the next pass on the latest gaps.
func (c *RetryController) PrepareRetry() {
	c.attempts++
	c.focus = append([]string(nil), c.last.MissingFields...)
}

// Drive loops extract -> decide -> prepare until the controller ends.
// It always runs at least one pass and never more than max(1, maxAttempts-prior).
func (c *RetryController) Drive(ctx context.Context, extract ExtractFunc) (MetadataOutcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return MetadataOutcome{}, err
		}
		out, err := extract(ctx, c.Focus(), c.State())
		if err != nil {
			return MetadataOutcome{}, err
		}
		c.Record(out)

		decision := c.Next()
		c.logger.Info("retry.decision",
			"decision", decision,
			"complete", out.Complete,
			"attempts", c.attempts,
			"max_attempts", c.maxAttempts,
			"missing", out.MissingFields,
		)
		if decision == DecisionEnd {
			return out, nil
		}
		c.PrepareRetry()
	}
}
