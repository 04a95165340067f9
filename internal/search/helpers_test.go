package search

import (
	"context"
	"fmt"

	"github.com/midl-xyz/triage/pkg/models"
)

// issues builds minimal issue fixtures with predictable titles.
func issues(nums ...int) []models.Issue {
	result := make([]models.Issue, len(nums))
	for i, n := range nums {
		result[i] = models.Issue{
			Number: n,
			Title:  fmt.Sprintf("Issue %d", n),
			URL:    fmt.Sprintf("https://github.com/test/repo/issues/%d", n),
			Status: "open",
			Author: "reporter",
		}
	}
	return result
}

// fakeTracker is an in-memory Tracker for tests. Unset function fields make
// the corresponding call fail loudly.
type fakeTracker struct {
	searchFn   func(ctx context.Context, query string, limit int, includeClosed bool) ([]models.Issue, error)
	commentsFn func(ctx context.Context, issueNumber int) ([]models.Comment, error)
	createFn   func(ctx context.Context, title, body string, labels []string) (models.CreatedIssue, error)

	searchCalls int
}

func (f *fakeTracker) SearchIssues(ctx context.Context, query string, limit int, includeClosed bool) ([]models.Issue, error) {
	f.searchCalls++
	if f.searchFn == nil {
		return nil, fmt.Errorf("unexpected SearchIssues call")
	}
	return f.searchFn(ctx, query, limit, includeClosed)
}

func (f *fakeTracker) GetIssueComments(ctx context.Context, issueNumber int) ([]models.Comment, error) {
	if f.commentsFn == nil {
		return nil, fmt.Errorf("unexpected GetIssueComments call")
	}
	return f.commentsFn(ctx, issueNumber)
}

func (f *fakeTracker) CreateIssue(ctx context.Context, title, body string, labels []string) (models.CreatedIssue, error) {
	if f.createFn == nil {
		return models.CreatedIssue{}, fmt.Errorf("unexpected CreateIssue call")
	}
	return f.createFn(ctx, title, body, labels)
}

// staticTracker returns a tracker whose search always yields the given
// issues.
func staticTracker(found ...models.Issue) *fakeTracker {
	return &fakeTracker{
		searchFn: func(context.Context, string, int, bool) ([]models.Issue, error) {
			return found, nil
		},
	}
}
