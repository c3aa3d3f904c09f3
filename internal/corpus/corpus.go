// Package corpus builds the deterministic data sets and position sequences
// the benchmark replays against every provider.
package corpus

import (
	"math"

	"lyricbench/pkg/timing"
)

const (
	DefaultSize               = 100_000
	DefaultInterval     int64 = 50
	DefaultTrials             = 2_000
	DefaultDurationSec        = 10
	DefaultJitterCount        = 20_000
	DefaultJitterRadius int64 = 300
	DefaultForwardStep  int64 = 16
	DefaultSeekCount          = 10_000
)

// DefaultFrameRates are the simulated render rates for continuous playback.
var DefaultFrameRates = []int{30, 60, 120}

// Fixed returns n contiguous lines of length step starting at 0; each line
// ends where the next begins.
func Fixed(n int, step int64) []timing.Line {
	if n <= 0 {
		return nil
	}
	lines := make([]timing.Line, n)
	var begin int64
	for i := range lines {
		lines[i] = timing.NewLine(begin, begin+step, "")
		begin += step
	}
	return lines
}

// TotalDuration is the end of the last line, or 0 for an empty corpus.
func TotalDuration[T timing.Interval](items []T) int64 {
	if len(items) == 0 {
		return 0
	}
	return items[len(items)-1].End()
}

// SinglePoint repeats the corpus midpoint trials times.
func SinglePoint(total int64, trials int) []int64 {
	if trials <= 0 {
		return nil
	}
	positions := make([]int64, trials)
	mid := total / 2
	for i := range positions {
		positions[i] = mid
	}
	return positions
}

// Continuous emits frame timestamps round(1000/fps * frame) for durationSec
// seconds at each frame rate in turn, clamped to total.
func Continuous(total int64, frameRates []int, durationSec int) []int64 {
	var positions []int64
	for _, fps := range frameRates {
		if fps <= 0 {
			continue
		}
		frameMs := 1000.0 / float64(fps)
		frames := fps * durationSec
		for i := 0; i < frames; i++ {
			positions = append(positions, min(int64(math.Round(frameMs*float64(i))), total))
		}
	}
	return positions
}

// UniformSweep emits count evenly spaced positions across [0, total). It is
// what the report calls "random seek"; there is no randomness involved.
func UniformSweep(total int64, count int) []int64 {
	if count <= 0 {
		return nil
	}
	step := total / int64(count)
	positions := make([]int64, count)
	for i := range positions {
		positions[i] = int64(i) * step
	}
	return positions
}

// HotspotCenters returns 1/3, 1/2 and 2/3 of total.
func HotspotCenters(total int64) []int64 {
	return []int64{total / 3, total / 2, total * 2 / 3}
}

// Jitter emits, for each center, perCenter offsets cycling through
// [-radius, +radius] in a saw-tooth, clamped into [0, total].
func Jitter(centers []int64, perCenter int, radius, total int64) []int64 {
	if perCenter <= 0 || radius < 0 {
		return nil
	}
	period := 2*radius + 1
	positions := make([]int64, 0, len(centers)*perCenter)
	for _, center := range centers {
		for i := 0; i < perCenter; i++ {
			offset := int64(i)%period - radius
			positions = append(positions, clamp(center+offset, 0, total))
		}
	}
	return positions
}

// ForwardSweep steps from 0 to total inclusive by step.
func ForwardSweep(step, total int64) []int64 {
	if step <= 0 || total < 0 {
		return nil
	}
	positions := make([]int64, 0, total/step+1)
	for t := int64(0); t <= total; t += step {
		positions = append(positions, t)
	}
	return positions
}

func clamp(v, lo, hi int64) int64 {
	return max(lo, min(v, hi))
}
