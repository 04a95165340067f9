package search

import (
	"strings"

	"github.com/midl-xyz/triage/pkg/models"
)

const (
	// titleBoost is added when any description token appears in the title.
	titleBoost = 0.15

	// bodyWeight and attachmentWeight combine the body and attachment
	// Jaccard overlaps when attachment content is present. Equal weights
	// let a fully-matching attachment raise a weak body score well past
	// the duplicate threshold.
	bodyWeight       = 0.5
	attachmentWeight = 0.5

	// minScoringTokenLength is shorter than the term extractor's minimum:
	// two-character tokens still carry signal for overlap scoring.
	minScoringTokenLength = 2
)

// SimilarityScorer computes a 0..1 textual relatedness score between a
// problem description and a candidate issue.
type SimilarityScorer struct{}

// Score tokenizes the description and the issue's title plus body, computes
// their Jaccard similarity, and adds a flat title boost when any description
// token appears in the title. Non-empty attachment content is folded in as a
// second Jaccard overlap, weighted equally with the body overlap; an empty
// attachment argument produces results identical to having none.
// The result is clamped to [0,1].
func (SimilarityScorer) Score(description string, issue models.Issue, attachmentContent string) float64 {
	descTokens := tokenize(description)
	issueTokens := tokenize(issue.Title + " " + issue.Body)
	titleTokens := tokenize(issue.Title)

	if len(descTokens) == 0 || len(issueTokens) == 0 {
		return 0
	}

	score := jaccard(descTokens, issueTokens)

	if attachmentContent != "" {
		attTokens := tokenize(attachmentContent)
		if len(attTokens) > 0 {
			score = bodyWeight*score + attachmentWeight*jaccard(descTokens, attTokens)
		}
	}

	for word := range descTokens {
		if _, ok := titleTokens[word]; ok {
			score += titleBoost
			break
		}
	}

	return clamp01(score)
}

// tokenize applies the extractor's normalization rules with a two-character
// minimum token length.
func tokenize(text string) map[string]struct{} {
	words := strings.Fields(stripNonWord(strings.ToLower(text)))
	tokens := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len(w) < minScoringTokenLength {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		tokens[w] = struct{}{}
	}
	return tokens
}

// jaccard is |intersection| / |union|, zero when either set is empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for word := range a {
		if _, ok := b[word]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
