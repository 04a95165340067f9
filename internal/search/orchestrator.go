package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/midl-xyz/triage/internal/logging"
	"github.com/midl-xyz/triage/pkg/models"
)

// maxIssuesToMine caps how many duplicate issues have their comment threads
// fetched and mined per request.
const maxIssuesToMine = 3

// TriageResult is what the orchestrator hands back to its caller: either a
// ranked list of applicable solutions, or a report draft awaiting
// confirmation, plus a pre-rendered response in both cases.
type TriageResult struct {
	// SearchAttempted is false only when the description yielded no terms.
	SearchAttempted bool

	// Detection holds the raw duplicate-detection outcome; nil when the
	// search step failed.
	Detection *DetectionResult

	// Solutions is the filtered, descending-sorted list of applicability
	// results. Solutions tiered "probably not relevant" are dropped.
	Solutions []models.ApplicabilityResult

	// HasSolutions is true when Solutions is non-empty.
	HasSolutions bool

	// ReportDraft is set only when no usable solutions were found.
	ReportDraft *models.BugReportDraft

	// Response is the human-readable rendering of the outcome.
	Response string
}

// Orchestrator sequences search, comment mining and scoring, then decides
// between presenting solutions and drafting a new report. One invocation
// handles one logical request; the only state shared between invocations
// lives in the injected caches.
type Orchestrator struct {
	tracker       Tracker
	detector      *DuplicateDetector
	terms         TermExtractor
	extractor     SolutionExtractor
	applicability *ApplicabilityScorer
	reports       ReportGenerator
	creator       *IssueCreator
	fixer         FixImplementer
	searchOpts    SearchOptions
}

// NewOrchestrator wires the pipeline. All collaborators are required except
// the creator, which is only exercised by SubmitReport.
func NewOrchestrator(tracker Tracker, detector *DuplicateDetector, applicability *ApplicabilityScorer, creator *IssueCreator, searchOpts SearchOptions) *Orchestrator {
	return &Orchestrator{
		tracker:       tracker,
		detector:      detector,
		applicability: applicability,
		creator:       creator,
		searchOpts:    searchOpts,
	}
}

// HandleProblemReport is the single entry point external callers use. It
// builds the reporter's context, runs duplicate detection, mines resolved
// conversations for fixes, ranks them by applicability, and falls through to
// drafting a bug report when nothing usable was found.
//
// A search failure is non-fatal: the request proceeds straight to the draft
// with no duplicate data.
func (o *Orchestrator) HandleProblemReport(ctx context.Context, description string, overrides models.UserContext) (*TriageResult, error) {
	log := logging.WithRequest(uuid.NewString())
	userCtx := ExtractUserContext(description, overrides)

	log.Info("handling problem report",
		"network", userCtx.Network,
		"method", userCtx.MethodName)

	result := &TriageResult{
		SearchAttempted: len(o.terms.ExtractTerms(description)) > 0,
	}

	if result.SearchAttempted {
		detection, err := o.detector.Detect(ctx, description, o.searchOpts)
		if err != nil {
			log.Warn("duplicate detection failed, continuing without search data", "error", err)
		} else {
			result.Detection = detection
		}

		if detection != nil && detection.HasDuplicates {
			result.Solutions = o.mineSolutions(ctx, log, detection.Duplicates, userCtx)
		}
	} else {
		log.Info("description yields no search terms, skipping duplicate detection")
	}

	if len(result.Solutions) > 0 {
		result.HasSolutions = true
		result.Response = o.formatSolutionsResponse(result.Solutions)
		log.Info("solutions found", "count", len(result.Solutions))
		return result, nil
	}

	draft := o.reports.Generate(description, nil)
	result.ReportDraft = &draft
	result.Response = o.formatDraftResponse(draft)
	log.Info("no usable solutions, drafted report", "title", draft.Title)

	return result, nil
}

// DraftReport generates a bug-report draft directly, without searching.
func (o *Orchestrator) DraftReport(description string) models.BugReportDraft {
	return o.reports.Generate(description, nil)
}

// SubmitReport forwards an approved draft to the issue creator. Pure
// delegation; reachable only after HandleProblemReport has produced a draft.
func (o *Orchestrator) SubmitReport(ctx context.Context, draft models.BugReportDraft) SubmissionResult {
	return o.creator.SubmitDraft(ctx, draft)
}

// PrepareFix locates where a chosen solution applies in a local project tree
// and returns a diff for human confirmation. Pure delegation.
func (o *Orchestrator) PrepareFix(solution models.Solution, projectRoot string) (FixResult, error) {
	return o.fixer.LocateAndPrepareFix(solution, projectRoot)
}

// mineSolutions fetches comment threads for the top duplicate issues,
// extracts candidate solutions and scores each against the reporter's
// context. Issues with zero comments are skipped without a fetch call, and a
// failed comment fetch skips only that issue.
func (o *Orchestrator) mineSolutions(ctx context.Context, log *slog.Logger, duplicates []models.SearchResult, userCtx models.UserContext) []models.ApplicabilityResult {
	var scored []models.ApplicabilityResult

	mined := 0
	for _, dup := range duplicates {
		if mined >= maxIssuesToMine {
			break
		}
		if dup.Issue.Comments == 0 {
			continue
		}
		mined++

		comments, err := o.tracker.GetIssueComments(ctx, dup.Issue.Number)
		if err != nil {
			log.Warn("comment fetch failed, skipping issue",
				"issue_number", dup.Issue.Number, "error", err)
			continue
		}

		for i := range comments {
			comments[i].IsAuthor = comments[i].Author == dup.Issue.Author
		}

		for _, solution := range o.extractor.Extract(dup.Issue, comments) {
			result := o.applicability.ScoreApplicability(solution, userCtx)
			if result.Level == models.LevelNotRelevant {
				continue
			}
			scored = append(scored, result)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// formatSolutionsResponse renders the ranked solution list with one reason
// line per contributing criterion and an explicit menu of next actions.
func (o *Orchestrator) formatSolutionsResponse(solutions []models.ApplicabilityResult) string {
	var b strings.Builder

	plural := "es"
	if len(solutions) == 1 {
		plural = ""
	}
	fmt.Fprintf(&b, "I found %d potential fix%s in previously resolved issues:\n\n", len(solutions), plural)

	for i, s := range solutions {
		fmt.Fprintf(&b, "%d. [%s, %s] #%d: %s\n",
			i+1, s.Level, s.Solution.Type, s.Solution.IssueNumber, s.Solution.Description)
		for _, reason := range s.Reasons {
			fmt.Fprintf(&b, "   - %s\n", reason)
		}
		if s.Solution.IssueURL != "" {
			fmt.Fprintf(&b, "   %s\n", s.Solution.IssueURL)
		}
		b.WriteString("\n")
	}

	b.WriteString("What would you like to do?\n")
	b.WriteString("  1. Implement one of these fixes\n")
	b.WriteString("  2. Show me how to apply it\n")
	b.WriteString("  3. File a new report anyway\n")

	return b.String()
}

// formatDraftResponse renders the report draft with a confirmation prompt.
func (o *Orchestrator) formatDraftResponse(draft models.BugReportDraft) string {
	var b strings.Builder

	b.WriteString("I couldn't find an existing fix for this, so here's a bug report draft:\n\n")
	fmt.Fprintf(&b, "**Title:** %s\n\n", draft.Title)
	b.WriteString(o.reports.FormatAsMarkdown(draft))
	b.WriteString("\n\n")
	b.WriteString(`Does this look right? You can say "yes" to submit, "edit" to modify, or add more details.`)
	b.WriteString("\n")

	return b.String()
}
