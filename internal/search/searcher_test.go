package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midl-xyz/triage/pkg/models"
)

func TestSearchWrapsResultsWithZeroScore(t *testing.T) {
	tracker := staticTracker(issues(1, 2)...)
	searcher := NewSearcher(tracker, nil, 5, time.Second)

	results, err := searcher.Search(context.Background(), "broadcast timeout error", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Zero(t, r.Score)
	}
}

func TestSearchEmptyTermsSkipsTracker(t *testing.T) {
	tracker := staticTracker()
	searcher := NewSearcher(tracker, nil, 5, time.Second)

	results, err := searcher.Search(context.Background(), "the and for", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, tracker.searchCalls, "no search possible without terms")
}

func TestSearchUsesCache(t *testing.T) {
	tracker := staticTracker(issues(1)...)
	cache := NewCache(time.Minute, 10)
	searcher := NewSearcher(tracker, cache, 5, time.Second)

	_, err := searcher.Search(context.Background(), "wallet connect error", SearchOptions{})
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "wallet connect error", SearchOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, tracker.searchCalls, "second call should hit the cache")
	require.Len(t, results, 1)
	assert.Zero(t, results[0].Score, "cached results carry score zero")
}

func TestSearchTimeoutReturnsEmpty(t *testing.T) {
	tracker := &fakeTracker{
		searchFn: func(ctx context.Context, _ string, _ int, _ bool) ([]models.Issue, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	searcher := NewSearcher(tracker, nil, 5, 20*time.Millisecond)

	results, err := searcher.Search(context.Background(), "wallet connect error", SearchOptions{})
	require.NoError(t, err, "timeout is absorbed, not propagated")
	assert.Empty(t, results)
}

func TestSearchPropagatesTrackerErrors(t *testing.T) {
	trackerErr := errors.New("rate limit exhausted")
	tracker := &fakeTracker{
		searchFn: func(context.Context, string, int, bool) ([]models.Issue, error) {
			return nil, trackerErr
		},
	}
	searcher := NewSearcher(tracker, nil, 5, time.Second)

	_, err := searcher.Search(context.Background(), "wallet connect error", SearchOptions{})
	assert.ErrorIs(t, err, trackerErr)
}
