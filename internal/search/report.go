package search

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/midl-xyz/triage/pkg/models"
)

// maxTitleLength caps generated report titles.
const maxTitleLength = 80

var (
	sdkVersionWithPkgRe = regexp.MustCompile(`(?i)@midl/[\w-]+\s+\d+\.\d+\.\d+`)

	criticalSeverityRe = regexp.MustCompile(`\b(crash|crashes|data loss|corrupt)\b`)
	highSeverityRe     = regexp.MustCompile(`\b(error|exception|fail|fails|failed|broken)\b`)
	mediumSeverityRe   = regexp.MustCompile(`\b(unexpected|wrong|incorrect|weird)\b`)
)

// ReportGenerator drafts structured bug reports from free-text problem
// descriptions.
type ReportGenerator struct{}

// Generate builds a report draft from the description, extracting error
// message, SDK version, network and method names heuristically. Fields set
// on additional override the extracted values; its environment is merged
// field by field.
func (g ReportGenerator) Generate(description string, additional *models.BugReportDraft) models.BugReportDraft {
	errorMessage := extractErrorMessage(description)

	sdkVersion := ""
	if m := sdkVersionWithPkgRe.FindString(description); m != "" {
		sdkVersion = strings.TrimSpace(m)
	}

	network := ""
	if m := networkWordRe.FindStringSubmatch(description); m != nil {
		network = strings.ToLower(m[1])
	}

	methods := extractMethodNames(description)

	draft := models.BugReportDraft{
		Title:       g.generateTitle(description, errorMessage, methods),
		Description: strings.TrimSpace(description),
		Environment: models.Environment{
			SDKVersion: sdkVersion,
			Network:    network,
		},
		ErrorOutput: errorMessage,
		Severity:    inferSeverity(description),
	}
	if errorMessage != "" {
		draft.ActualBehavior = "Error: " + errorMessage
	}

	if additional != nil {
		mergeDraft(&draft, additional)
	}

	return draft
}

// FormatAsMarkdown renders a draft as the issue body submitted to the
// tracker.
func (ReportGenerator) FormatAsMarkdown(draft models.BugReportDraft) string {
	var sections []string

	sections = append(sections, fmt.Sprintf("## Description\n\n%s", draft.Description))

	if draft.StepsToReproduce != "" {
		sections = append(sections, fmt.Sprintf("## Steps to Reproduce\n\n%s", draft.StepsToReproduce))
	}

	expected := draft.ExpectedBehavior
	if expected == "" {
		expected = "N/A"
	}
	actual := draft.ActualBehavior
	if actual == "" {
		actual = "N/A"
	}
	sections = append(sections, fmt.Sprintf(
		"## Expected vs Actual Behavior\n\n**Expected:** %s\n\n**Actual:** %s", expected, actual))

	var envLines []string
	env := draft.Environment
	if env.SDKVersion != "" {
		envLines = append(envLines, "- **SDK:** "+env.SDKVersion)
	}
	if env.NodeVersion != "" {
		envLines = append(envLines, "- **Node.js:** "+env.NodeVersion)
	}
	if env.Browser != "" {
		envLines = append(envLines, "- **Browser:** "+env.Browser)
	}
	if env.OS != "" {
		envLines = append(envLines, "- **OS:** "+env.OS)
	}
	if env.Network != "" {
		envLines = append(envLines, "- **Network:** "+env.Network)
	}
	if len(envLines) > 0 {
		sections = append(sections, fmt.Sprintf("## Environment\n\n%s", strings.Join(envLines, "\n")))
	}

	if draft.ErrorOutput != "" {
		sections = append(sections, fmt.Sprintf("## Error Output\n\n```\n%s\n```", draft.ErrorOutput))
	}

	sections = append(sections, fmt.Sprintf("**Severity:** %s", draft.Severity))

	return strings.Join(sections, "\n\n")
}

// FormatAsIssueLink builds a prefilled new-issue URL, used as the manual
// fallback when automated submission fails.
func (g ReportGenerator) FormatAsIssueLink(draft models.BugReportDraft, owner, repo string) string {
	params := url.Values{}
	params.Set("title", draft.Title)
	params.Set("body", g.FormatAsMarkdown(draft))
	return fmt.Sprintf("https://github.com/%s/%s/issues/new?%s", owner, repo, params.Encode())
}

// generateTitle prefers "method fails with error", then the bare error, then
// the description's first sentence, capped at maxTitleLength.
func (ReportGenerator) generateTitle(description, errorMessage string, methods []string) string {
	if len(methods) > 0 && errorMessage != "" {
		return truncate(fmt.Sprintf("%s fails with '%s'", methods[0], errorMessage), maxTitleLength)
	}
	if errorMessage != "" {
		return truncate(errorMessage, maxTitleLength)
	}

	firstSentence := description
	if idx := strings.IndexAny(description, ".!?\n"); idx >= 0 {
		firstSentence = description[:idx]
	}
	firstSentence = strings.TrimSpace(firstSentence)
	if firstSentence != "" {
		return truncate(firstSentence, maxTitleLength)
	}

	return "Bug report"
}

// inferSeverity buckets a description by its strongest impact keyword.
func inferSeverity(description string) models.Severity {
	lower := strings.ToLower(description)
	switch {
	case criticalSeverityRe.MatchString(lower):
		return models.SeverityCritical
	case highSeverityRe.MatchString(lower):
		return models.SeverityHigh
	case mediumSeverityRe.MatchString(lower):
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// mergeDraft overlays non-zero fields of additional onto draft.
func mergeDraft(draft, additional *models.BugReportDraft) {
	if additional.Title != "" {
		draft.Title = truncate(additional.Title, maxTitleLength)
	}
	if additional.Description != "" {
		draft.Description = additional.Description
	}
	if additional.StepsToReproduce != "" {
		draft.StepsToReproduce = additional.StepsToReproduce
	}
	if additional.ExpectedBehavior != "" {
		draft.ExpectedBehavior = additional.ExpectedBehavior
	}
	if additional.ActualBehavior != "" {
		draft.ActualBehavior = additional.ActualBehavior
	}
	if additional.ErrorOutput != "" {
		draft.ErrorOutput = additional.ErrorOutput
	}
	if additional.Severity != "" {
		draft.Severity = additional.Severity
	}

	env := &draft.Environment
	add := additional.Environment
	if add.SDKVersion != "" {
		env.SDKVersion = add.SDKVersion
	}
	if add.NodeVersion != "" {
		env.NodeVersion = add.NodeVersion
	}
	if add.Browser != "" {
		env.Browser = add.Browser
	}
	if add.OS != "" {
		env.OS = add.OS
	}
	if add.Network != "" {
		env.Network = add.Network
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
