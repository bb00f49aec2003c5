package feed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreDistanceTerm(t *testing.T) {
	ten := 10.0
	withLocation := Score(ScoreInputs{DistanceKm: &ten})
	// distanceScore = 1/11 for a 10 km candidate.
	assert.InDelta(t, weightFreshness*1+weightDistance*(1.0/11.0), withLocation, 1e-9)

	// Without location the flat 0.3 default applies.
	withoutLocation := Score(ScoreInputs{})
	assert.InDelta(t, weightFreshness*1+weightDistance*0.3, withoutLocation, 1e-9)
}

func TestScoreFreshnessDecay(t *testing.T) {
	fresh := Score(ScoreInputs{})
	dayOld := Score(ScoreInputs{AgeSeconds: 86400})
	assert.Greater(t, fresh, dayOld)
	// One decay constant of age multiplies the freshness term by 1/e.
	assert.InDelta(t, weightFreshness*math.Exp(-1)+weightDistance*0.3, dayOld, 1e-9)
}

func TestScoreTrustNormalization(t *testing.T) {
	low := Score(ScoreInputs{TrustScore: 0})
	high := Score(ScoreInputs{TrustScore: 100})
	assert.InDelta(t, weightTrust, high-low, 1e-9)
}

func TestScoreIntent(t *testing.T) {
	base := Score(ScoreInputs{Intent: IntentNoFilter})
	matched := Score(ScoreInputs{Intent: IntentMatched})
	mismatched := Score(ScoreInputs{Intent: IntentMismatched})

	assert.InDelta(t, weightIntent, matched-base, 1e-9)
	// Mismatch is a soft penalty, not exclusion.
	assert.InDelta(t, -0.5*weightIntent, mismatched-base, 1e-9)
}

func TestScoreCreatorPenalty(t *testing.T) {
	first := Score(ScoreInputs{CreatorRank: 0})
	second := Score(ScoreInputs{CreatorRank: 1})
	third := Score(ScoreInputs{CreatorRank: 2})

	assert.InDelta(t, 0.15, first-second, 1e-9)
	assert.InDelta(t, 0.30, first-third, 1e-9)
}

func TestScoreRandomnessAdditive(t *testing.T) {
	base := Score(ScoreInputs{})
	jittered := Score(ScoreInputs{Random: 0.149})
	assert.InDelta(t, 0.149, jittered-base, 1e-9)
}

func TestIntentMatchMapping(t *testing.T) {
	tag := "hiking"
	other := "coffee"
	empty := ""

	assert.Equal(t, IntentNoFilter, intentMatch(nil, &tag))
	assert.Equal(t, IntentNoFilter, intentMatch(&empty, &tag))
	assert.Equal(t, IntentMatched, intentMatch(&tag, &tag))
	assert.Equal(t, IntentMismatched, intentMatch(&other, &tag))
	assert.Equal(t, IntentMismatched, intentMatch(&other, nil))
}
