// Package search implements the duplicate-search and solution-mining
// pipeline: term extraction, cached tracker search, similarity scoring,
// duplicate detection, comment mining and applicability ranking, all
// sequenced by the workflow orchestrator.
package search

import (
	"context"

	"github.com/midl-xyz/triage/pkg/models"
)

// Tracker is the issue-tracker surface the pipeline consumes. The tracker
// client owns authentication and rate limiting; the pipeline only adds
// timeout bounds around the calls it makes.
type Tracker interface {
	// SearchIssues runs a free-text query and returns matching issues in
	// the tracker's relevance order.
	SearchIssues(ctx context.Context, query string, limit int, includeClosed bool) ([]models.Issue, error)

	// GetIssueComments returns the comment thread of an issue. The
	// IsAuthor flag on returned comments is unset; callers compute it.
	GetIssueComments(ctx context.Context, issueNumber int) ([]models.Comment, error)

	// CreateIssue opens a new issue and returns its reference.
	CreateIssue(ctx context.Context, title, body string, labels []string) (models.CreatedIssue, error)
}
