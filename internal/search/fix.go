package search

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/midl-xyz/triage/pkg/models"
)

// FixResult is the outcome of locating a fix target in a project tree.
// Applied is false until the separate, explicit Apply step runs; nothing is
// ever written to disk before that.
type FixResult struct {
	Applied     bool
	FilePath    string
	Diff        string
	Explanation string

	// Candidates lists the matching files when more than one was found;
	// the user picks one and retries.
	Candidates []string
}

// sourceExtensions are the file types scanned for fix targets.
var sourceExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// skipDirs are directory names excluded from the project walk.
var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	"dist":         {},
	"build":        {},
	".next":        {},
	"coverage":     {},
	"vendor":       {},
}

var (
	importNamesRe    = regexp.MustCompile(`import\s*\{([^}]+)\}`)
	callIdentifierRe = regexp.MustCompile(`\b([a-zA-Z_][\w]*)\s*\(`)
	propertyAccessRe = regexp.MustCompile(`\.([a-zA-Z_][\w]{2,})`)
)

// identifierKeywords are call-shaped tokens that are never identifiers.
var identifierKeywords = map[string]struct{}{
	"if": {}, "for": {}, "while": {}, "switch": {}, "catch": {},
	"return": {}, "function": {}, "new": {}, "typeof": {}, "instanceof": {},
}

// FixImplementer locates where a mined solution applies in a local project
// tree and prepares a diff for human confirmation. Scope is single-point
// fixes; it never modifies files without the explicit Apply step.
type FixImplementer struct{}

// LocateAndPrepareFix extracts identifiers from the solution's code snippet,
// finds project files containing at least half of them, and returns a diff
// proposal when exactly one file matches. Ambiguous or empty matches come
// back as advisory results, not errors.
func (f FixImplementer) LocateAndPrepareFix(solution models.Solution, projectRoot string) (FixResult, error) {
	if solution.CodeSnippet == "" {
		return FixResult{
			Explanation: solution.Description,
		}, fmt.Errorf("solution has no code snippet; apply manually: %s", solution.Description)
	}

	identifiers := extractIdentifiers(solution.CodeSnippet)
	if len(identifiers) == 0 {
		return FixResult{
			Explanation: solution.Description,
		}, fmt.Errorf("no identifiable code patterns in the solution snippet")
	}

	candidates := findRelevantFiles(identifiers, projectRoot)

	if len(candidates) == 0 {
		return FixResult{
			Explanation: solution.Description,
		}, fmt.Errorf("no files containing %s found under %s", strings.Join(firstN(identifiers, 3), ", "), projectRoot)
	}

	if len(candidates) > 1 {
		return FixResult{
			Candidates:  candidates,
			Explanation: solution.Description,
		}, nil
	}

	filePath := candidates[0]
	if _, err := os.ReadFile(filePath); err != nil {
		return FixResult{}, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	return FixResult{
		FilePath: filePath,
		Diff:     renderDiff(filePath, solution.CodeSnippet),
		Explanation: fmt.Sprintf(
			"**Why this fix works:** %s\n\n**File:** %s\n\n**Confidence:** %s\n\nReview the diff above. Say **yes** to apply or **no** to skip.",
			solution.Description, filePath, solution.Confidence),
	}, nil
}

// Apply writes confirmed content to a file. This is the only operation in the
// pipeline that modifies the user's project.
func (FixImplementer) Apply(filePath, newContent string) error {
	if err := os.WriteFile(filePath, []byte(newContent), 0o644); err != nil {
		return fmt.Errorf("failed to write to %s: %w", filePath, err)
	}
	return nil
}

// extractIdentifiers pulls import names, call names and property accesses
// out of a code snippet. Regex-based; no parsing.
func extractIdentifiers(snippet string) []string {
	seen := make(map[string]struct{})
	var identifiers []string

	add := func(name string) {
		name = strings.TrimSpace(name)
		if len(name) < 3 {
			return
		}
		if _, keyword := identifierKeywords[name]; keyword {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		identifiers = append(identifiers, name)
	}

	for _, m := range importNamesRe.FindAllStringSubmatch(snippet, -1) {
		for _, name := range strings.Split(m[1], ",") {
			add(name)
		}
	}
	for _, m := range callIdentifierRe.FindAllStringSubmatch(snippet, -1) {
		add(m[1])
	}
	for _, m := range propertyAccessRe.FindAllStringSubmatch(snippet, -1) {
		add(m[1])
	}

	return identifiers
}

// findRelevantFiles walks the project tree and keeps files containing at
// least half the identifiers. Unreadable files and directories are skipped.
func findRelevantFiles(identifiers []string, projectRoot string) []string {
	required := (len(identifiers) + 1) / 2
	var matches []string

	filepath.WalkDir(projectRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return filepath.SkipDir
		}
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		if !hasSourceExtension(d.Name()) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		text := string(content)
		count := 0
		for _, id := range identifiers {
			if strings.Contains(text, id) {
				count++
			}
		}
		if count >= required {
			matches = append(matches, path)
		}
		return nil
	})

	return matches
}

func hasSourceExtension(name string) bool {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// renderDiff shows where the solution snippet would apply. The snippet is
// presented for review rather than machine-merged.
func renderDiff(filePath, snippet string) string {
	lines := []string{
		"--- " + filePath,
		"+++ " + filePath + " (with fix applied)",
		"",
		"The solution suggests applying this code:",
		"",
		"```",
		snippet,
		"```",
		"",
		"Review the suggestion above and confirm if you'd like me to apply it.",
	}
	return strings.Join(lines, "\n")
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
