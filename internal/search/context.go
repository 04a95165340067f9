package search

import (
	"regexp"
	"strings"

	"github.com/midl-xyz/triage/pkg/models"
)

// Heuristic extraction patterns shared by user-context derivation and report
// drafting. Pure string matching, no I/O.
var (
	sdkPackageVersionRe = regexp.MustCompile(`(?i)@midl/[\w-]+\s+(\d+\.\d+\.\d+)`)
	networkWordRe       = regexp.MustCompile(`(?i)\b(testnet|mainnet|devnet|signet|regtest)\b`)
	errorLineRe         = regexp.MustCompile(`Error:\s*([^\n]+)`)
	quotedErrorRe       = regexp.MustCompile(`"([^"]{5,})"`)
	methodCallRe        = regexp.MustCompile(`\b([a-z][a-zA-Z0-9]+)\s*\(`)
)

// methodCallKeywords are language keywords that look like calls and must be
// ignored during method-name extraction.
var methodCallKeywords = map[string]struct{}{
	"if": {}, "for": {}, "while": {}, "switch": {}, "catch": {}, "return": {},
}

// ExtractUserContext derives the reporter's context from a free-text
// description. Explicit values on overrides win over anything extracted.
// The result is never mutated after construction.
func ExtractUserContext(description string, overrides models.UserContext) models.UserContext {
	ctx := models.UserContext{
		Description:  description,
		ErrorMessage: overrides.ErrorMessage,
		SDKVersion:   overrides.SDKVersion,
		Network:      overrides.Network,
		MethodName:   overrides.MethodName,
	}

	if ctx.ErrorMessage == "" {
		ctx.ErrorMessage = extractErrorMessage(description)
	}
	if ctx.SDKVersion == "" {
		if m := sdkPackageVersionRe.FindStringSubmatch(description); m != nil {
			ctx.SDKVersion = m[1]
		}
	}
	if ctx.Network == "" {
		if m := networkWordRe.FindStringSubmatch(description); m != nil {
			ctx.Network = strings.ToLower(m[1])
		}
	}
	if ctx.MethodName == "" {
		ctx.MethodName = extractMethodName(description)
	}

	return ctx
}

// extractErrorMessage picks an "Error: ..." line if present, otherwise the
// first quoted string of at least five characters.
func extractErrorMessage(text string) string {
	if m := errorLineRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := quotedErrorRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractMethodName returns the first call-shaped identifier that is not a
// language keyword.
func extractMethodName(text string) string {
	for _, m := range methodCallRe.FindAllStringSubmatch(text, -1) {
		if _, keyword := methodCallKeywords[m[1]]; !keyword {
			return m[1]
		}
	}
	return ""
}

// extractMethodNames returns every call-shaped identifier in order, keywords
// excluded. Used by report drafting for title generation.
func extractMethodNames(text string) []string {
	var methods []string
	for _, m := range methodCallRe.FindAllStringSubmatch(text, -1) {
		if _, keyword := methodCallKeywords[m[1]]; !keyword {
			methods = append(methods, m[1])
		}
	}
	return methods
}
