package search

import (
	"context"

	"github.com/midl-xyz/triage/internal/logging"
	"github.com/midl-xyz/triage/pkg/models"
)

// SubmissionResult describes the outcome of submitting a report draft.
// When automated creation fails, FallbackURL carries a prefilled new-issue
// link the user can open manually; failure to create is not an error.
type SubmissionResult struct {
	Created     bool
	IssueNumber int
	IssueURL    string
	FallbackURL string
}

// IssueCreator submits approved report drafts to the tracker.
type IssueCreator struct {
	tracker   Tracker
	generator ReportGenerator
	owner     string
	repo      string
	labels    []string
}

// NewIssueCreator wires a creator. Owner and repo are used only for the
// manual fallback link; labels are attached to every created issue.
func NewIssueCreator(tracker Tracker, owner, repo string, labels []string) *IssueCreator {
	return &IssueCreator{
		tracker: tracker,
		owner:   owner,
		repo:    repo,
		labels:  labels,
	}
}

// SubmitDraft renders the draft and creates a tracker issue from it. A
// creation failure degrades to a manual fallback link.
func (c *IssueCreator) SubmitDraft(ctx context.Context, draft models.BugReportDraft) SubmissionResult {
	body := c.generator.FormatAsMarkdown(draft)

	created, err := c.tracker.CreateIssue(ctx, draft.Title, body, c.labels)
	if err != nil {
		logging.Warn("issue creation failed, falling back to manual link", "error", err)
		return SubmissionResult{
			FallbackURL: c.generator.FormatAsIssueLink(draft, c.owner, c.repo),
		}
	}

	return SubmissionResult{
		Created:     true,
		IssueNumber: created.Number,
		IssueURL:    created.URL,
	}
}
