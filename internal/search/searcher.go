package search

import (
	"context"
	"errors"
	"time"

	"github.com/midl-xyz/triage/internal/logging"
	"github.com/midl-xyz/triage/pkg/models"
)

// SearchOptions tunes a single search call. Zero values take the searcher's
// defaults.
type SearchOptions struct {
	Limit         int
	IncludeClosed bool
	Timeout       time.Duration
}

// Searcher combines the term extractor, the search cache and the tracker
// client into a single bounded-latency search call.
type Searcher struct {
	tracker   Tracker
	extractor TermExtractor
	cache     *Cache
	limit     int
	timeout   time.Duration
}

// NewSearcher wires a searcher. A nil cache disables caching.
func NewSearcher(tracker Tracker, cache *Cache, limit int, timeout time.Duration) *Searcher {
	if limit <= 0 {
		limit = 5
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Searcher{
		tracker: tracker,
		cache:   cache,
		limit:   limit,
		timeout: timeout,
	}
}

// Search extracts terms from the description and queries the tracker,
// returning each issue wrapped as a SearchResult with score zero. Scoring
// happens later and is never cached because it depends on the description.
//
// An empty term set returns an empty list with no error ("no search
// possible"). A search that exceeds its timeout logs a warning and also
// returns an empty list; any other tracker failure propagates.
func (s *Searcher) Search(ctx context.Context, description string, opts SearchOptions) ([]models.SearchResult, error) {
	terms := s.extractor.ExtractTerms(description)
	if len(terms) == 0 {
		return nil, nil
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(terms); ok {
			logging.Debug("search cache hit", "terms", terms)
			return wrapResults(cached), nil
		}
	}

	query := s.extractor.BuildQuery(terms)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = s.timeout
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = s.limit
	}

	searchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		issues []models.Issue
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		issues, err := s.tracker.SearchIssues(searchCtx, query, limit, opts.IncludeClosed)
		ch <- outcome{issues: issues, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				logging.Warn("tracker search timed out", "timeout", timeout, "query", query)
				return nil, nil
			}
			return nil, out.err
		}
		if s.cache != nil {
			s.cache.Set(terms, out.issues)
		}
		return wrapResults(out.issues), nil

	case <-searchCtx.Done():
		if errors.Is(searchCtx.Err(), context.DeadlineExceeded) {
			logging.Warn("tracker search timed out", "timeout", timeout, "query", query)
			return nil, nil
		}
		return nil, searchCtx.Err()
	}
}

func wrapResults(issues []models.Issue) []models.SearchResult {
	results := make([]models.SearchResult, len(issues))
	for i, issue := range issues {
		results[i] = models.SearchResult{Issue: issue}
	}
	return results
}
