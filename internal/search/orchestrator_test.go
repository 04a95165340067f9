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

// newTestOrchestrator builds a full pipeline over an in-memory tracker with
// the default 0.75 duplicate threshold and no attachment fetching.
func newTestOrchestrator(tracker Tracker) *Orchestrator {
	searcher := NewSearcher(tracker, nil, 5, time.Second)
	detector := NewDuplicateDetector(searcher, nil, 0.75)
	creator := NewIssueCreator(tracker, "midl-xyz", "sdk", []string{"bug"})
	return NewOrchestrator(tracker, detector, NewApplicabilityScorer(nil), creator, SearchOptions{})
}

func TestHandleProblemReportDraftsWhenNoDuplicates(t *testing.T) {
	tracker := staticTracker(
		models.Issue{Number: 1, Title: "completely unrelated subject"},
	)
	orch := newTestOrchestrator(tracker)

	description := "broadcastTransaction() hangs forever on testnet"
	result, err := orch.HandleProblemReport(context.Background(), description, models.UserContext{})
	require.NoError(t, err)

	assert.True(t, result.SearchAttempted)
	require.NotNil(t, result.Detection)
	assert.False(t, result.HasSolutions)
	require.NotNil(t, result.ReportDraft)
	assert.Equal(t, description, result.ReportDraft.Description)
	assert.Contains(t, result.Response, "bug report draft")
}

func TestHandleProblemReportPresentsSolutions(t *testing.T) {
	description := "broadcastTransaction hangs on testnet. Error: mempool conflict"
	issue := models.Issue{
		Number:   9,
		Title:    description,
		URL:      "https://example.com/9",
		Author:   "reporter",
		Comments: 2,
	}
	tracker := staticTracker(issue)
	tracker.commentsFn = func(_ context.Context, issueNumber int) ([]models.Comment, error) {
		require.Equal(t, 9, issueNumber)
		return []models.Comment{
			{Author: "helper", Body: "The fix is passing a longer timeout on testnet if you hit\nError: mempool conflict"},
			{Author: "stranger", Body: "I am seeing this too"},
		}, nil
	}
	orch := newTestOrchestrator(tracker)

	result, err := orch.HandleProblemReport(context.Background(), description, models.UserContext{})
	require.NoError(t, err)

	require.True(t, result.HasSolutions)
	assert.Nil(t, result.ReportDraft)
	require.NotEmpty(t, result.Solutions)
	assert.Contains(t, result.Response, "potential fix")
	assert.Contains(t, result.Response, "#9")
	assert.Contains(t, result.Response, "What would you like to do?")
}

func TestHandleProblemReportStopWordOnlyDescription(t *testing.T) {
	tracker := staticTracker(issues(1)...)
	orch := newTestOrchestrator(tracker)

	result, err := orch.HandleProblemReport(context.Background(), "it is not so", models.UserContext{})
	require.NoError(t, err)

	assert.False(t, result.SearchAttempted, "no terms means no search was possible")
	assert.Zero(t, tracker.searchCalls, "tracker must not be queried without terms")
	assert.Nil(t, result.Detection)
	require.NotNil(t, result.ReportDraft)
	assert.Equal(t, "it is not so", result.ReportDraft.Description)
}

func TestHandleProblemReportSearchFailureIsNonFatal(t *testing.T) {
	tracker := &fakeTracker{
		searchFn: func(context.Context, string, int, bool) ([]models.Issue, error) {
			return nil, errors.New("tracker down")
		},
	}
	orch := newTestOrchestrator(tracker)

	result, err := orch.HandleProblemReport(context.Background(), "something broke badly", models.UserContext{})
	require.NoError(t, err)

	assert.Nil(t, result.Detection)
	require.NotNil(t, result.ReportDraft)
}

func TestMineSolutionsSkipsZeroCommentIssues(t *testing.T) {
	commentFetches := 0
	issue := models.Issue{
		Number:   3,
		Title:    "broadcastTransaction hangs forever testnet",
		Author:   "reporter",
		Comments: 0,
	}
	tracker := staticTracker(issue)
	tracker.commentsFn = func(context.Context, int) ([]models.Comment, error) {
		commentFetches++
		return nil, nil
	}
	orch := newTestOrchestrator(tracker)

	result, err := orch.HandleProblemReport(context.Background(),
		"broadcastTransaction hangs forever testnet", models.UserContext{})
	require.NoError(t, err)

	assert.Zero(t, commentFetches)
	assert.False(t, result.HasSolutions)
	require.NotNil(t, result.ReportDraft)
}

func TestMineSolutionsSkipsFailedCommentFetch(t *testing.T) {
	issue := models.Issue{
		Number:   4,
		Title:    "broadcastTransaction hangs forever testnet",
		Author:   "reporter",
		Comments: 1,
	}
	tracker := staticTracker(issue)
	tracker.commentsFn = func(context.Context, int) ([]models.Comment, error) {
		return nil, errors.New("rate limited")
	}
	orch := newTestOrchestrator(tracker)

	result, err := orch.HandleProblemReport(context.Background(),
		"broadcastTransaction hangs forever testnet", models.UserContext{})
	require.NoError(t, err)

	assert.False(t, result.HasSolutions)
	require.NotNil(t, result.ReportDraft)
}

func TestMineSolutionsDropsNotRelevant(t *testing.T) {
	issue := models.Issue{
		Number:   5,
		Title:    "broadcastTransaction hangs forever testnet",
		Author:   "reporter",
		Comments: 1,
	}
	tracker := staticTracker(issue)
	tracker.commentsFn = func(context.Context, int) ([]models.Comment, error) {
		// A bare suggested fix with zero matching context scores 0.0.
		return []models.Comment{{Author: "helper", Body: "fixed by restarting"}}, nil
	}
	orch := newTestOrchestrator(tracker)

	result, err := orch.HandleProblemReport(context.Background(),
		"broadcastTransaction hangs forever testnet", models.UserContext{})
	require.NoError(t, err)

	assert.Empty(t, result.Solutions)
	require.NotNil(t, result.ReportDraft)
}

func TestMineSolutionsMarksAuthorComments(t *testing.T) {
	description := "broadcastTransaction hangs on testnet. Error: mempool conflict"
	issue := models.Issue{
		Number:   6,
		Title:    description,
		Author:   "reporter",
		Comments: 1,
	}
	tracker := staticTracker(issue)
	tracker.commentsFn = func(context.Context, int) ([]models.Comment, error) {
		return []models.Comment{
			{Author: "reporter", Body: "this worked after the upgrade, no more\nError: mempool conflict"},
		}, nil
	}
	orch := newTestOrchestrator(tracker)

	result, err := orch.HandleProblemReport(context.Background(), description, models.UserContext{})
	require.NoError(t, err)

	require.True(t, result.HasSolutions)
	sol := result.Solutions[0].Solution
	assert.Equal(t, models.ConfidenceConfirmed, sol.Confidence)
	assert.True(t, sol.SourceComment.IsAuthor)
}

func TestDraftReportDelegates(t *testing.T) {
	orch := newTestOrchestrator(staticTracker())

	draft := orch.DraftReport("Error: boom on mainnet")
	assert.Equal(t, "boom on mainnet", draft.Title)
	assert.Equal(t, "mainnet", draft.Environment.Network)
}

func TestSubmitReportDelegates(t *testing.T) {
	created := false
	tracker := staticTracker()
	tracker.createFn = func(context.Context, string, string, []string) (models.CreatedIssue, error) {
		created = true
		return models.CreatedIssue{Number: 12, URL: "https://example.com/12"}, nil
	}
	orch := newTestOrchestrator(tracker)

	result := orch.SubmitReport(context.Background(), models.BugReportDraft{Title: "t", Severity: models.SeverityLow})
	assert.True(t, created)
	assert.True(t, result.Created)
	assert.Equal(t, 12, result.IssueNumber)
}
