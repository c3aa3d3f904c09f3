package bench

import (
	"sort"
)

// CompositeScore is the weighted sum of a provider's per-scenario speedups
// over the baseline. 1.0 means parity across the weighted workload.
type CompositeScore struct {
	Provider string  `yaml:"provider"`
	Score    float64 `yaml:"score"`
	// Incomplete is set when the provider or the baseline failed in at least
	// one scenario; such scenarios contribute nothing.
	Incomplete bool `yaml:"incomplete,omitempty"`
}

// Ratio is baselineAvg / avg. Averages are floored at 1ns so a clock that
// reports 0 does not divide by zero.
func Ratio(baselineAvg, avg int64) float64 {
	return float64(max(baselineAvg, 1)) / float64(max(avg, 1))
}

// Improvement is the percentage speedup over the baseline,
// (baselineAvg/avg - 1) * 100.
func Improvement(baselineAvg, avg int64) float64 {
	return (Ratio(baselineAvg, avg) - 1) * 100
}

// Score computes one composite score per provider and ranks them
// descending. Ties keep registration order. Scenarios where the baseline
// failed are skipped for everyone and mark every score incomplete.
func Score(res *Result) []CompositeScore {
	scores := make([]CompositeScore, len(res.Providers))
	for i, name := range res.Providers {
		scores[i].Provider = name
	}

	for _, sr := range res.Scenarios {
		base, ok := sr.ByProvider[res.Baseline]
		if !ok || base.Failed() {
			// Nobody can be compared here, so every score covers less
			// than the full weight.
			for i := range scores {
				scores[i].Incomplete = true
			}
			continue
		}
		for i, name := range res.Providers {
			m, ok := sr.ByProvider[name]
			if !ok || m.Failed() {
				scores[i].Incomplete = true
				continue
			}
			scores[i].Score += Ratio(base.Stats.Avg, m.Stats.Avg) * sr.Weight
		}
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores
}
