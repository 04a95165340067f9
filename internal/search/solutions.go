package search

import (
	"regexp"
	"strings"

	"github.com/midl-xyz/triage/pkg/models"
)

// Positive signals mark a comment as a candidate solution. Negative signals
// veto a comment outright, even when a positive signal is also present.
var (
	positiveSignals = []string{
		"this worked",
		"fixed it",
		"fixed by",
		"fixed in",
		"resolved",
		"the fix is",
		"this fixed",
		"solution is",
		"solved by",
		"as a workaround",
		"changing the config",
		"change the",
		"update the",
		"upgrading",
		"upgrade to",
	}

	negativeSignals = []string{
		"didn't work",
		"doesn't work",
		"did not work",
		"still broken",
		"still not working",
		"same issue",
		"no luck",
		"not fixed",
	}
)

// networkKeywords is scanned in this fixed order; the first hit wins.
var networkKeywords = []string{"testnet", "mainnet", "devnet", "signet", "regtest"}

// methodNames are known SDK entry points, scanned in order; first match wins.
var methodNames = []string{
	"broadcastTransaction",
	"signTransaction",
	"sendTransaction",
	"getBalance",
	"getTransaction",
	"connectWallet",
	"useAccount",
	"useMidl",
	"useConnect",
	"estimateFee",
}

var (
	fencedBlockRe = regexp.MustCompile("(?s)```[\\w]*\\n(.*?)```")
	sdkVersionRe  = regexp.MustCompile(`(?i)(?:@midl/\w+\s+|v)(\d+\.\d+\.\d+)`)
)

// maxDescriptionLength caps a solution's free-text description.
const maxDescriptionLength = 200

// minConfirmedReactions is the positive-reaction count at which a comment
// counts as community-confirmed.
const minConfirmedReactions = 2

// SolutionExtractor mines an issue's comment thread for heuristic "this
// fixed it" signals and structures them into candidate solutions.
type SolutionExtractor struct{}

// Extract yields at most one Solution per accepted comment. A comment is
// rejected when it carries any negative signal, and skipped silently when it
// carries no positive signal either.
func (e SolutionExtractor) Extract(issue models.Issue, comments []models.Comment) []models.Solution {
	var solutions []models.Solution

	for _, comment := range comments {
		bodyLower := strings.ToLower(comment.Body)

		if containsAny(bodyLower, negativeSignals) {
			continue
		}
		if !containsAny(bodyLower, positiveSignals) {
			continue
		}

		codeSnippet := ""
		if m := fencedBlockRe.FindStringSubmatch(comment.Body); m != nil {
			codeSnippet = strings.TrimSpace(m[1])
		}

		description := strings.TrimSpace(fencedBlockRe.ReplaceAllString(comment.Body, ""))
		if runes := []rune(description); len(runes) > maxDescriptionLength {
			description = string(runes[:maxDescriptionLength])
		}

		solutions = append(solutions, models.Solution{
			Type:          classifyType(bodyLower),
			Description:   description,
			CodeSnippet:   codeSnippet,
			Confidence:    determineConfidence(comment),
			Context:       extractSolutionContext(comment.Body),
			SourceComment: comment,
			IssueNumber:   issue.Number,
			IssueURL:      issue.URL,
		})
	}

	return solutions
}

// classifyType picks the solution type by keyword priority: workaround
// keywords first, then config keywords, otherwise a plain fix.
func classifyType(bodyLower string) models.SolutionType {
	if strings.Contains(bodyLower, "workaround") || strings.Contains(bodyLower, "alternative") {
		return models.SolutionWorkaround
	}
	if strings.Contains(bodyLower, "config") || strings.Contains(bodyLower, "setting") {
		return models.SolutionConfigChange
	}
	return models.SolutionFix
}

// determineConfidence marks a solution confirmed when the issue's own
// reporter says it worked, or when enough people reacted positively.
func determineConfidence(comment models.Comment) models.Confidence {
	if comment.IsAuthor && strings.Contains(strings.ToLower(comment.Body), "this worked") {
		return models.ConfidenceConfirmed
	}
	if comment.Reactions.PlusOne >= minConfirmedReactions {
		return models.ConfidenceConfirmed
	}
	return models.ConfidenceSuggested
}

// extractSolutionContext pulls environment details out of a comment body via
// fixed pattern lists. Each list is scanned in order; the first match wins.
func extractSolutionContext(body string) models.SolutionContext {
	var ctx models.SolutionContext

	if m := sdkVersionRe.FindStringSubmatch(body); m != nil {
		ctx.SDKVersion = m[1]
	}

	bodyLower := strings.ToLower(body)
	for _, network := range networkKeywords {
		if strings.Contains(bodyLower, network) {
			ctx.Network = network
			break
		}
	}

	for _, method := range methodNames {
		if strings.Contains(body, method) {
			ctx.MethodName = method
			break
		}
	}

	ctx.ErrorMessage = extractErrorMessage(body)

	return ctx
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
