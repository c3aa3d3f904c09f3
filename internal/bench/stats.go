package bench

import (
	"math"
	"slices"
)

// LatencyStats summarises per-query timings in nanoseconds.
type LatencyStats struct {
	Avg     int64 `yaml:"avg_ns"`
	P95     int64 `yaml:"p95_ns"`
	P99     int64 `yaml:"p99_ns"`
	Samples int   `yaml:"samples"`
}

// ComputeStats sorts samples in place and reduces them to the rounded mean
// and the floor(n*0.95) / floor(n*0.99) order statistics.
func ComputeStats(samples []int64) LatencyStats {
	n := len(samples)
	if n == 0 {
		return LatencyStats{}
	}
	slices.Sort(samples)

	var sum float64
	for _, s := range samples {
		sum += float64(s)
	}
	return LatencyStats{
		Avg:     int64(math.Round(sum / float64(n))),
		P95:     samples[percentileIndex(n, 0.95)],
		P99:     samples[percentileIndex(n, 0.99)],
		Samples: n,
	}
}

func percentileIndex(n int, q float64) int {
	return min(int(float64(n)*q), n-1)
}
