package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/papers-extractor/internal/entity"
)

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		complete    bool
		attempts    int
		maxAttempts int
		want        Decision
	}{
		{false, 0, 1, DecisionRetry},
		{false, 1, 1, DecisionEnd},
		{true, 0, 5, DecisionEnd},
		{false, 2, 5, DecisionRetry},
		{false, 5, 5, DecisionEnd},
		{false, 0, 0, DecisionEnd},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShouldRetry(tt.complete, tt.attempts, tt.maxAttempts),
			"complete=%v attempts=%d max=%d", tt.complete, tt.attempts, tt.maxAttempts)
	}
}

type passRecord struct {
	focus []string
	prior entity.Metadata
}

func scriptedPasses(outcomes ...MetadataOutcome) (ExtractFunc, *[]passRecord) {
	var seen []passRecord
	i := 0
	return func(_ context.Context, focus []string, prior entity.Metadata) (MetadataOutcome, error) {
		seen = append(seen, passRecord{focus: focus, prior: prior})
		out := outcomes[min(i, len(outcomes)-1)]
		i++
		return out, nil
	}, &seen
}

func TestDriveSinglePassByDefault(t *testing.T) {
	extract, seen := scriptedPasses(MetadataOutcome{MissingFields: []string{"journal"}})
	ctrl := NewRetryController(0, DefaultMaxAttempts, nil)

	out, err := ctrl.Drive(context.Background(), extract)
	require.NoError(t, err)
	assert.Len(t, *seen, 1)
	assert.Equal(t, 1, ctrl.Attempts())
	assert.Equal(t, []string{"journal"}, out.MissingFields)
}

func TestDriveRetriesWithFocus(t *testing.T) {
	first := MetadataOutcome{
		Metadata:      entity.Metadata{Title: "T", Authors: []string{}},
		MissingFields: []string{"authors", "journal"},
	}
	second := MetadataOutcome{
		Metadata:      entity.Metadata{Title: "T", Authors: []string{"A"}},
		MissingFields: []string{"journal"},
	}
	third := MetadataOutcome{
		Metadata: entity.Metadata{Title: "T", Authors: []string{"A"}, Journal: "J"},
		Complete: true,
	}
	extract, seen := scriptedPasses(first, second, third)
	ctrl := NewRetryController(0, 5, nil)

	out, err := ctrl.Drive(context.Background(), extract)
	require.NoError(t, err)
	require.Len(t, *seen, 3)
	assert.True(t, out.Complete)
	assert.Equal(t, 3, ctrl.Attempts())

	assert.Nil(t, (*seen)[0].focus)
	assert.Equal(t, []string{"authors", "journal"}, (*seen)[1].focus)
	assert.Equal(t, "T", (*seen)[1].prior.Title)
	assert.Equal(t, []string{"journal"}, (*seen)[2].focus)
	assert.Equal(t, []string{"A"}, (*seen)[2].prior.Authors)
}

func TestDriveStopsAtBudget(t *testing.T) {
	extract, seen := scriptedPasses(MetadataOutcome{MissingFields: []string{"year"}})
	ctrl := NewRetryController(0, 3, nil)

	out, err := ctrl.Drive(context.Background(), extract)
	require.NoError(t, err)
	assert.Len(t, *seen, 3)
	assert.False(t, out.Complete)
	assert.Equal(t, DecisionEnd, ctrl.Next())
}

func TestDriveCountsPriorAttempts(t *testing.T) {
	extract, seen := scriptedPasses(MetadataOutcome{})
	ctrl := NewRetryController(2, 3, nil)

	_, err := ctrl.Drive(context.Background(), extract)
	require.NoError(t, err)
	assert.Len(t, *seen, 1)
}

func TestDrivePropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	ctrl := NewRetryController(0, 3, nil)
	_, err := ctrl.Drive(context.Background(), func(context.Context, []string, entity.Metadata) (MetadataOutcome, error) {
		return MetadataOutcome{}, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestDriveHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	extract, seen := scriptedPasses(MetadataOutcome{})

	_, err := NewRetryController(0, 3, nil).Drive(ctx, extract)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *seen)
}
