// Package feed ranks activity candidates with a deterministic, explainable
// weighted formula plus a small per-request randomness term.
package feed

import "math"

// Scoring weights and constants. All terms land roughly in [-0.5, 1.2];
// higher wins.
const (
	weightFreshness = 0.35
	weightDistance  = 0.25
	weightTrust     = 0.20
	weightIntent    = 0.20

	// Exponential decay constant for freshness, in seconds. Half-life is
	// about 16.6 hours.
	freshnessDecaySeconds = 86400.0

	// Distance score used when the viewer supplied no location. Kept below
	// the typical in-range score so missing geo data never dominates.
	flatDistanceScore = 0.3

	// Penalty step applied per recency rank of a creator's additional
	// activities in the same query; caps prolific creators.
	creatorPenaltyStep = 0.15

	// Upper bound (exclusive) of the per-request randomness term.
	randomnessSpan = 0.15

	// DefaultRadiusKm bounds the candidate set when a location is given but
	// no explicit radius was requested.
	DefaultRadiusKm = 50.0
)

// IntentMatch describes how a candidate relates to the requested intent filter.
type IntentMatch int

const (
	IntentNoFilter IntentMatch = iota
	IntentMatched
	IntentMismatched
)

func (m IntentMatch) score() float64 {
	switch m {
	case IntentMatched:
		return 1
	case IntentMismatched:
		// Soft penalty, not exclusion.
		return -0.5
	}
	return 0
}

// ScoreInputs are the per-candidate signals feeding the formula.
type ScoreInputs struct {
	AgeSeconds  float64
	DistanceKm  *float64
	TrustScore  int
	Intent      IntentMatch
	CreatorRank int
	Random      float64
}

// Score computes the ranking score for one candidate.
func Score(in ScoreInputs) float64 {
	freshness := math.Exp(-in.AgeSeconds / freshnessDecaySeconds)

	distanceScore := flatDistanceScore
	if in.DistanceKm != nil {
		distanceScore = 1 / (1 + *in.DistanceKm)
	}

	trustNorm := float64(in.TrustScore) / 100

	return weightFreshness*freshness +
		weightDistance*distanceScore +
		weightTrust*trustNorm +
		weightIntent*in.Intent.score() -
		float64(in.CreatorRank)*creatorPenaltyStep +
		in.Random
}
