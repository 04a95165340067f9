// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// Issue represents a tracker issue snapshot as of fetch time. The tracker
// owns the issue; the pipeline only ever holds read-only copies.
type Issue struct {
	// Number is the issue number in the tracker (e.g., 42)
	Number int

	// Title is the issue's title or summary
	Title string

	// URL is the human-facing link to the issue
	URL string

	// Status is "open" or "closed"
	Status string

	// Labels is a slice of label names attached to the issue
	Labels []string

	// Comments is the comment count reported by the tracker
	Comments int

	// CreatedAt is the timestamp when the issue was created
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the issue was last updated
	UpdatedAt time.Time

	// Body is the full body text of the issue
	Body string

	// Author is the login of the user who opened the issue
	Author string
}

// SearchResult pairs an issue with its similarity to the current problem
// description. Score starts at zero and is filled in by the scorer; results
// live only for the duration of a single search call.
type SearchResult struct {
	Issue Issue

	// Score is the textual similarity to the description, in [0,1]
	Score float64
}

// Reactions holds the reaction counts on a comment.
type Reactions struct {
	TotalCount int
	PlusOne    int
	Heart      int
}

// Comment represents a single issue comment. IsAuthor is not supplied by the
// tracker; callers must set it by comparing the comment author against the
// parent issue's author before mining.
type Comment struct {
	ID        int64
	Author    string
	Body      string
	CreatedAt time.Time
	IsAuthor  bool
	Reactions Reactions
}

// SolutionType classifies what kind of change a mined solution describes.
type SolutionType string

const (
	SolutionFix          SolutionType = "fix"
	SolutionWorkaround   SolutionType = "workaround"
	SolutionConfigChange SolutionType = "config-change"
)

// Confidence indicates how much trust a mined solution carries.
type Confidence string

const (
	ConfidenceConfirmed Confidence = "confirmed"
	ConfidenceSuggested Confidence = "suggested"
)

// SolutionContext holds the environment details extracted from the comment a
// solution was mined from. All fields are optional; empty means unknown.
type SolutionContext struct {
	SDKVersion   string
	Network      string
	MethodName   string
	ErrorMessage string
}

// Solution is a candidate fix mined from exactly one issue comment.
type Solution struct {
	Type SolutionType

	// Description is the comment body with code fences stripped,
	// truncated to 200 characters
	Description string

	// CodeSnippet is the first fenced code block from the comment, verbatim
	CodeSnippet string

	Confidence Confidence
	Context    SolutionContext

	// SourceComment identifies the comment the solution came from
	SourceComment Comment

	// IssueNumber and IssueURL identify the parent issue
	IssueNumber int
	IssueURL    string
}

// ApplicabilityLevel is the qualitative tier derived from a numeric
// applicability score.
type ApplicabilityLevel string

const (
	LevelVeryLikely  ApplicabilityLevel = "very likely"
	LevelMightHelp   ApplicabilityLevel = "might help"
	LevelNotRelevant ApplicabilityLevel = "probably not relevant"
)

// ApplicabilityResult pairs a solution with how well its context matches the
// reporter's, plus one human-readable reason per contributing criterion.
type ApplicabilityResult struct {
	Solution Solution
	Score    float64
	Level    ApplicabilityLevel
	Reasons  []string
}

// UserContext holds what we know about the reporter's environment, derived
// once per request from the problem description. Never mutated afterwards.
type UserContext struct {
	Description  string
	ErrorMessage string
	SDKVersion   string
	Network      string
	MethodName   string
}

// Severity buckets a bug report draft by impact.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Environment captures the reporter's runtime details for a report draft.
type Environment struct {
	SDKVersion  string
	NodeVersion string
	Browser     string
	OS          string
	Network     string
}

// BugReportDraft is a structured bug report generated from a free-text
// description, awaiting user confirmation before submission.
type BugReportDraft struct {
	Title            string
	Description      string
	StepsToReproduce string
	ExpectedBehavior string
	ActualBehavior   string
	Environment      Environment
	ErrorOutput      string
	Severity         Severity
}

// CreatedIssue references an issue created in the tracker.
type CreatedIssue struct {
	Number int
	URL    string
}
