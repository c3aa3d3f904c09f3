package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyricbench/internal/bench"
)

func sampleResult() *bench.Result {
	res := &bench.Result{
		Baseline:   "base",
		Providers:  []string{"base", "binary"},
		CorpusSize: 42,
		Elapsed:    1500 * time.Millisecond,
		Scenarios: []bench.ScenarioResult{{
			Scenario: bench.RandomSeek,
			Weight:   1,
			ByProvider: map[string]bench.Measurement{
				"base":   {Stats: bench.LatencyStats{Avg: 200, P95: 250, P99: 300}},
				"binary": {Stats: bench.LatencyStats{Avg: 100, P95: 110, P99: 120}},
			},
		}, {
			Scenario: bench.HotJitter,
			Weight:   0,
			ByProvider: map[string]bench.Measurement{
				"base":   {Stats: bench.LatencyStats{Avg: 10}},
				"binary": {Err: bench.ErrProviderFailed},
			},
		}},
	}
	res.Scores = bench.Score(res)
	return res
}

func TestObserve(t *testing.T) {
	r := NewRecorder()
	r.Observe(sampleResult())

	assert.Equal(t, 200.0, testutil.ToFloat64(r.latency.WithLabelValues("base", "random_seek", "avg")))
	assert.Equal(t, 120.0, testutil.ToFloat64(r.latency.WithLabelValues("binary", "random_seek", "p99")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.score.WithLabelValues("binary", "base")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("binary", "hot_jitter")))
	assert.Equal(t, 42.0, testutil.ToFloat64(r.corpus))
	assert.Equal(t, 1.5, testutil.ToFloat64(r.elapsed))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Observe(sampleResult())

	path := filepath.Join(t.TempDir(), "lyricbench.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `lyricbench_composite_score{baseline="base",provider="binary"} 2`)
	assert.Contains(t, string(data), "lyricbench_corpus_lines 42")
}
