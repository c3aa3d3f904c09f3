package bench

import (
	"lyricbench/internal/corpus"
)

// Workload sizes the generated position sequences.
type Workload struct {
	SinglePointTrials int
	FrameRates        []int
	DurationSec       int
	JitterCount       int
	JitterRadius      int64
	ForwardStep       int64
	SeekCount         int
}

// DefaultWorkload mirrors the corpus package defaults.
func DefaultWorkload() Workload {
	return Workload{
		SinglePointTrials: corpus.DefaultTrials,
		FrameRates:        corpus.DefaultFrameRates,
		DurationSec:       corpus.DefaultDurationSec,
		JitterCount:       corpus.DefaultJitterCount,
		JitterRadius:      corpus.DefaultJitterRadius,
		ForwardStep:       corpus.DefaultForwardStep,
		SeekCount:         corpus.DefaultSeekCount,
	}
}

// Plan is the position sequence replayed for one scenario.
type Plan struct {
	Scenario  Scenario
	Positions []int64
	// Sequential plans are timed one call at a time on a single goroutine.
	Sequential bool
}

// Plans generates one plan per scenario for a corpus spanning total ms.
// Every provider replays the same sequences.
func Plans(total int64, w Workload) []Plan {
	centers := corpus.HotspotCenters(total)
	perCenter := 0
	if len(centers) > 0 {
		perCenter = w.JitterCount / len(centers)
	}
	return []Plan{
		{Scenario: SinglePoint, Positions: corpus.SinglePoint(total, w.SinglePointTrials), Sequential: true},
		{Scenario: Continuous, Positions: corpus.Continuous(total, w.FrameRates, w.DurationSec)},
		{Scenario: RandomSeek, Positions: corpus.UniformSweep(total, w.SeekCount)},
		{Scenario: HotJitter, Positions: corpus.Jitter(centers, perCenter, w.JitterRadius, total)},
		{Scenario: ForwardSeek, Positions: corpus.ForwardSweep(w.ForwardStep, total)},
	}
}
