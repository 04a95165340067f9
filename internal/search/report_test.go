package search

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/midl-xyz/triage/pkg/models"
)

func TestGenerateTitle(t *testing.T) {
	gen := ReportGenerator{}

	t.Run("method and error", func(t *testing.T) {
		draft := gen.Generate("broadcastTransaction() throws Error: mempool conflict", nil)
		assert.Equal(t, "broadcastTransaction fails with 'mempool conflict'", draft.Title)
	})

	t.Run("error only", func(t *testing.T) {
		draft := gen.Generate("Seeing Error: out of gas constantly", nil)
		assert.Equal(t, "out of gas constantly", draft.Title)
	})

	t.Run("first sentence fallback", func(t *testing.T) {
		draft := gen.Generate("The balance never refreshes. It stays stale forever.", nil)
		assert.Equal(t, "The balance never refreshes", draft.Title)
	})

	t.Run("title capped at eighty runes", func(t *testing.T) {
		draft := gen.Generate(strings.Repeat("a", 200), nil)
		assert.Len(t, []rune(draft.Title), 80)
	})

	t.Run("blank description", func(t *testing.T) {
		draft := gen.Generate("   ", nil)
		assert.Equal(t, "Bug report", draft.Title)
	})
}

func TestInferSeverity(t *testing.T) {
	cases := []struct {
		description string
		want        models.Severity
	}{
		{"the app crashes on startup", models.SeverityCritical},
		{"possible data loss after the error", models.SeverityCritical},
		{"request failed with an exception", models.SeverityHigh},
		{"the number shown is wrong", models.SeverityMedium},
		{"the spinner is a bit slow", models.SeverityLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, inferSeverity(tc.description), tc.description)
	}
}

func TestGenerateExtractsEnvironment(t *testing.T) {
	gen := ReportGenerator{}

	draft := gen.Generate("Using @midl/core 1.2.3 on signet, getBalance() returns Error: nope", nil)

	assert.Equal(t, "@midl/core 1.2.3", draft.Environment.SDKVersion)
	assert.Equal(t, "signet", draft.Environment.Network)
	assert.Equal(t, "nope", draft.ErrorOutput)
	assert.Equal(t, "Error: nope", draft.ActualBehavior)
}

func TestGenerateMergesAdditional(t *testing.T) {
	gen := ReportGenerator{}

	additional := &models.BugReportDraft{
		StepsToReproduce: "1. call it twice",
		Environment:      models.Environment{OS: "macOS"},
		Severity:         models.SeverityCritical,
	}
	draft := gen.Generate("Error: something broke on testnet", additional)

	assert.Equal(t, "1. call it twice", draft.StepsToReproduce)
	assert.Equal(t, "macOS", draft.Environment.OS)
	assert.Equal(t, "testnet", draft.Environment.Network, "merge keeps extracted fields the override leaves empty")
	assert.Equal(t, models.SeverityCritical, draft.Severity)
}

func TestFormatAsMarkdown(t *testing.T) {
	gen := ReportGenerator{}

	draft := models.BugReportDraft{
		Title:            "getBalance fails",
		Description:      "balance call hangs",
		StepsToReproduce: "1. connect\n2. call getBalance",
		ExpectedBehavior: "returns a number",
		Environment:      models.Environment{SDKVersion: "@midl/core 1.0.0", Network: "testnet"},
		ErrorOutput:      "timeout after 30s",
		Severity:         models.SeverityHigh,
	}

	body := gen.FormatAsMarkdown(draft)

	assert.Contains(t, body, "## Description\n\nbalance call hangs")
	assert.Contains(t, body, "## Steps to Reproduce")
	assert.Contains(t, body, "**Expected:** returns a number")
	assert.Contains(t, body, "**Actual:** N/A")
	assert.Contains(t, body, "- **SDK:** @midl/core 1.0.0")
	assert.Contains(t, body, "- **Network:** testnet")
	assert.Contains(t, body, "## Error Output\n\n```\ntimeout after 30s\n```")
	assert.Contains(t, body, "**Severity:** high")
}

func TestFormatAsMarkdownOmitsEmptySections(t *testing.T) {
	gen := ReportGenerator{}

	body := gen.FormatAsMarkdown(models.BugReportDraft{
		Description: "just a description",
		Severity:    models.SeverityLow,
	})

	assert.NotContains(t, body, "## Steps to Reproduce")
	assert.NotContains(t, body, "## Environment")
	assert.NotContains(t, body, "## Error Output")
	assert.Contains(t, body, "**Expected:** N/A")
}

func TestFormatAsIssueLink(t *testing.T) {
	gen := ReportGenerator{}

	draft := models.BugReportDraft{Title: "getBalance fails", Description: "hangs", Severity: models.SeverityLow}
	link := gen.FormatAsIssueLink(draft, "midl-xyz", "sdk")

	assert.True(t, strings.HasPrefix(link, "https://github.com/midl-xyz/sdk/issues/new?"))

	parsed, err := url.Parse(link)
	assert.NoError(t, err)
	values := parsed.Query()
	assert.Equal(t, "getBalance fails", values.Get("title"))
	assert.Contains(t, values.Get("body"), "## Description")
}
