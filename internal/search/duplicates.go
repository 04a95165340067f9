package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/midl-xyz/triage/pkg/models"
)

// DetectionResult is the outcome of one duplicate-detection pass.
type DetectionResult struct {
	// Results holds every search result, sorted descending by score.
	Results []models.SearchResult

	// Duplicates is the subset of Results at or above the threshold.
	Duplicates []models.SearchResult

	// HasDuplicates is true when Duplicates is non-empty.
	HasDuplicates bool

	// SearchTerms are the raw lowercase tokens of the description, kept
	// for diagnostics; unlike extractor terms they are not stop-word
	// filtered.
	SearchTerms []string
}

// DuplicateDetector searches the tracker, scores every result against the
// description and classifies results above a threshold as duplicates.
type DuplicateDetector struct {
	searcher  *Searcher
	scorer    SimilarityScorer
	fetcher   *AttachmentFetcher
	threshold float64
}

// NewDuplicateDetector wires a detector. The fetcher is optional; without
// one, issues are scored on title and body alone. A non-positive threshold
// takes the 0.75 default.
func NewDuplicateDetector(searcher *Searcher, fetcher *AttachmentFetcher, threshold float64) *DuplicateDetector {
	if threshold <= 0 {
		threshold = 0.75
	}
	return &DuplicateDetector{
		searcher:  searcher,
		fetcher:   fetcher,
		threshold: threshold,
	}
}

// Detect runs the search and scores every result, folding in attachment
// content when a fetcher is configured.
func (d *DuplicateDetector) Detect(ctx context.Context, description string, opts SearchOptions) (*DetectionResult, error) {
	results, err := d.searcher.Search(ctx, description, opts)
	if err != nil {
		return nil, err
	}

	for i := range results {
		attachmentContent := ""
		if d.fetcher != nil {
			attachmentContent = d.fetcher.FetchAttachmentContent(ctx, results[i].Issue.Number, results[i].Issue.Body)
		}
		results[i].Score = d.scorer.Score(description, results[i].Issue, attachmentContent)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	var duplicates []models.SearchResult
	for _, r := range results {
		if r.Score >= d.threshold {
			duplicates = append(duplicates, r)
		}
	}

	return &DetectionResult{
		Results:       results,
		Duplicates:    duplicates,
		HasDuplicates: len(duplicates) > 0,
		SearchTerms:   strings.Fields(stripNonWord(strings.ToLower(description))),
	}, nil
}

// Threshold returns the duplicate classification threshold.
func (d *DuplicateDetector) Threshold() float64 {
	return d.threshold
}

// FormatResults renders a numbered, percentage-annotated summary, prefixing
// entries at or above the threshold with a [DUPLICATE] marker.
func (d *DuplicateDetector) FormatResults(result *DetectionResult) string {
	if len(result.Results) == 0 {
		return "No related issues found."
	}

	plural := "s"
	if len(result.Results) == 1 {
		plural = ""
	}

	lines := []string{
		fmt.Sprintf("Found %d related issue%s:", len(result.Results), plural),
		"",
	}

	for _, r := range result.Results {
		pct := int(r.Score*100 + 0.5)
		prefix := ""
		if r.Score >= d.threshold {
			prefix = "[DUPLICATE] "
		}
		lines = append(lines,
			fmt.Sprintf("%s#%d (%d%% match) - %s", prefix, r.Issue.Number, pct, r.Issue.Title),
			fmt.Sprintf("  %s", r.Issue.URL),
			"")
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
