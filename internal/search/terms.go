package search

import (
	"sort"
	"strings"
)

const (
	// minTermLength is the shortest token kept by the term extractor.
	minTermLength = 3

	// maxTerms caps how many tokens a description yields.
	maxTerms = 8

	// maxQueryTerms caps how many tokens go into a tracker query.
	maxQueryTerms = 5
)

// stopWords are tokens too common to be useful as search terms. The
// similarity scorer shares this set.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"been": {}, "being": {}, "but": {}, "by": {}, "can": {}, "could": {},
	"did": {}, "do": {}, "does": {}, "doing": {}, "for": {}, "from": {},
	"had": {}, "has": {}, "have": {}, "how": {}, "i": {}, "if": {},
	"in": {}, "into": {}, "is": {}, "it": {}, "its": {}, "just": {},
	"like": {}, "me": {}, "my": {}, "no": {}, "not": {}, "of": {},
	"on": {}, "or": {}, "our": {}, "out": {}, "should": {}, "so": {},
	"some": {}, "than": {}, "that": {}, "the": {}, "their": {},
	"them": {}, "then": {}, "there": {}, "these": {}, "they": {},
	"this": {}, "those": {}, "to": {}, "too": {}, "try": {},
	"tried": {}, "trying": {}, "up": {}, "us": {}, "very": {},
	"was": {}, "we": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "why": {}, "will": {},
	"with": {}, "would": {}, "you": {}, "your": {},
}

// TermExtractor turns free text into a short, ordered set of salient search
// tokens. It is deterministic and has no side effects.
type TermExtractor struct{}

// ExtractTerms lowercases the description, strips everything except word
// characters and hyphens, drops short and stop-word tokens, de-duplicates,
// and returns at most maxTerms tokens sorted by descending length (longer
// tokens are assumed more specific). An empty result means no search is
// possible.
func (TermExtractor) ExtractTerms(description string) []string {
	cleaned := stripNonWord(strings.ToLower(description))
	words := strings.Fields(cleaned)

	seen := make(map[string]struct{}, len(words))
	var unique []string
	for _, w := range words {
		if len(w) < minTermLength {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		unique = append(unique, w)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return len(unique[i]) > len(unique[j])
	})

	if len(unique) > maxTerms {
		unique = unique[:maxTerms]
	}
	return unique
}

// BuildQuery joins the first maxQueryTerms tokens with spaces.
func (TermExtractor) BuildQuery(terms []string) string {
	if len(terms) > maxQueryTerms {
		terms = terms[:maxQueryTerms]
	}
	return strings.Join(terms, " ")
}

// stripNonWord replaces every character that is not a letter, digit,
// underscore, hyphen or whitespace with a space.
func stripNonWord(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}
