package bench

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticResult() *Result {
	avg := func(ns int64) Measurement { return Measurement{Stats: LatencyStats{Avg: ns, P95: ns, P99: ns}} }
	w := DefaultWeights()
	return &Result{
		Baseline:  "base",
		Providers: []string{"base", "fast", "slow"},
		Scenarios: []ScenarioResult{
			{Scenario: SinglePoint, Weight: w[SinglePoint], ByProvider: map[string]Measurement{"base": avg(100), "fast": avg(50), "slow": avg(200)}},
			{Scenario: Continuous, Weight: w[Continuous], ByProvider: map[string]Measurement{"base": avg(100), "fast": avg(25), "slow": avg(100)}},
			{Scenario: RandomSeek, Weight: w[RandomSeek], ByProvider: map[string]Measurement{"base": avg(100), "fast": avg(100), "slow": avg(400)}},
			{Scenario: HotJitter, Weight: w[HotJitter], ByProvider: map[string]Measurement{"base": avg(100), "fast": avg(50), "slow": avg(100)}},
			{Scenario: ForwardSeek, Weight: w[ForwardSeek], ByProvider: map[string]Measurement{"base": avg(100), "fast": avg(100), "slow": avg(50)}},
		},
	}
}

func TestScore(t *testing.T) {
	scores := Score(syntheticResult())
	require.Len(t, scores, 3)

	assert.Equal(t, "fast", scores[0].Provider)
	assert.InDelta(t, 2*0.15+4*0.35+1*0.30+2*0.15+1*0.05, scores[0].Score, 1e-12)
	assert.Equal(t, "base", scores[1].Provider)
	assert.InDelta(t, 1.0, scores[1].Score, 1e-12)
	assert.Equal(t, "slow", scores[2].Provider)
	assert.InDelta(t, 0.5*0.15+1*0.35+0.25*0.30+1*0.15+2*0.05, scores[2].Score, 1e-12)
}

func TestScoreDeterministic(t *testing.T) {
	first := Score(syntheticResult())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(syntheticResult()))
	}
}

func TestScoreFailures(t *testing.T) {
	res := syntheticResult()
	res.Scenarios[1].ByProvider["fast"] = Measurement{Err: ErrProviderFailed}
	scores := Score(res)
	for _, s := range scores {
		if s.Provider == "fast" {
			assert.True(t, s.Incomplete)
			assert.InDelta(t, 2*0.15+1*0.30+2*0.15+1*0.05, s.Score, 1e-12)
		}
	}

	res = syntheticResult()
	res.Scenarios[0].ByProvider["base"] = Measurement{Err: errors.New("boom")}
	for _, s := range Score(res) {
		assert.True(t, s.Incomplete, s.Provider)
		if s.Provider == "base" {
			assert.InDelta(t, 0.85, s.Score, 1e-12)
		}
	}
}

func TestRatioGuardsZero(t *testing.T) {
	assert.Equal(t, 100.0, Ratio(100, 0))
	assert.Equal(t, 1.0, Ratio(0, 0))
	assert.InDelta(t, 100.0, Improvement(200, 100), 1e-12)
	assert.InDelta(t, -50.0, Improvement(100, 200), 1e-12)
}
