package search

import (
	"fmt"
	"strings"

	"github.com/midl-xyz/triage/pkg/models"
)

// ApplicabilityWeights are the additive contributions of each matched
// criterion. They sum to one by default, but overrides may push the raw sum
// past it; the final score is clamped.
type ApplicabilityWeights struct {
	ErrorMessage float64
	SDKVersion   float64
	Network      float64
	MethodName   float64
	ConfirmedFix float64
}

// DefaultApplicabilityWeights returns the standard weight set.
func DefaultApplicabilityWeights() ApplicabilityWeights {
	return ApplicabilityWeights{
		ErrorMessage: 0.40,
		SDKVersion:   0.20,
		Network:      0.15,
		MethodName:   0.15,
		ConfirmedFix: 0.10,
	}
}

// Tier boundaries for the qualitative applicability levels.
const (
	veryLikelyThreshold = 0.6
	mightHelpThreshold  = 0.3
)

// ApplicabilityScorer compares a solution's recorded context against the
// reporter's context using additive weighted criteria.
type ApplicabilityScorer struct {
	weights ApplicabilityWeights
}

// NewApplicabilityScorer builds a scorer with the given overrides merged
// over the defaults. Keys: error_message, sdk_version, network, method_name,
// confirmed_fix. Unknown keys are ignored.
func NewApplicabilityScorer(overrides map[string]float64) *ApplicabilityScorer {
	w := DefaultApplicabilityWeights()
	for key, value := range overrides {
		switch key {
		case "error_message":
			w.ErrorMessage = value
		case "sdk_version":
			w.SDKVersion = value
		case "network":
			w.Network = value
		case "method_name":
			w.MethodName = value
		case "confirmed_fix":
			w.ConfirmedFix = value
		}
	}
	return &ApplicabilityScorer{weights: w}
}

// ScoreApplicability scores how well a solution's context matches the
// reporter's. Missing fields on either side contribute nothing. One reason
// string is emitted per contributing criterion, in evaluation order.
func (s *ApplicabilityScorer) ScoreApplicability(solution models.Solution, userCtx models.UserContext) models.ApplicabilityResult {
	score := 0.0
	var reasons []string

	// Exact error match takes the full weight; a substring match in either
	// direction takes half. The two are mutually exclusive.
	if solution.Context.ErrorMessage != "" && userCtx.ErrorMessage != "" {
		solErr := strings.ToLower(solution.Context.ErrorMessage)
		userErr := strings.ToLower(userCtx.ErrorMessage)

		if solErr == userErr {
			score += s.weights.ErrorMessage
			reasons = append(reasons, fmt.Sprintf("Exact error message match (+%g)", s.weights.ErrorMessage))
		} else if strings.Contains(userErr, solErr) || strings.Contains(solErr, userErr) {
			partial := s.weights.ErrorMessage / 2
			score += partial
			reasons = append(reasons, fmt.Sprintf("Partial error message match (+%g)", partial))
		}
	}

	if solution.Context.SDKVersion != "" && solution.Context.SDKVersion == userCtx.SDKVersion {
		score += s.weights.SDKVersion
		reasons = append(reasons, fmt.Sprintf("Same SDK version: %s (+%g)", userCtx.SDKVersion, s.weights.SDKVersion))
	}

	if solution.Context.Network != "" && solution.Context.Network == userCtx.Network {
		score += s.weights.Network
		reasons = append(reasons, fmt.Sprintf("Same network: %s (+%g)", userCtx.Network, s.weights.Network))
	}

	if solution.Context.MethodName != "" && solution.Context.MethodName == userCtx.MethodName {
		score += s.weights.MethodName
		reasons = append(reasons, fmt.Sprintf("Same method: %s (+%g)", userCtx.MethodName, s.weights.MethodName))
	}

	// The confirmed bonus applies regardless of context matches.
	if solution.Confidence == models.ConfidenceConfirmed {
		score += s.weights.ConfirmedFix
		reasons = append(reasons, fmt.Sprintf("Confirmed fix (+%g)", s.weights.ConfirmedFix))
	}

	score = clamp01(score)

	var level models.ApplicabilityLevel
	switch {
	case score >= veryLikelyThreshold:
		level = models.LevelVeryLikely
	case score >= mightHelpThreshold:
		level = models.LevelMightHelp
	default:
		level = models.LevelNotRelevant
	}

	return models.ApplicabilityResult{
		Solution: solution,
		Score:    score,
		Level:    level,
		Reasons:  reasons,
	}
}
