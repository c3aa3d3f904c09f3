package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"lyricbench/internal/bench"
)

func fixture() *bench.Result {
	ok := func(avg, p95, p99 int64) bench.Measurement {
		return bench.Measurement{Stats: bench.LatencyStats{Avg: avg, P95: p95, P99: p99, Samples: 10}}
	}
	res := &bench.Result{
		ID:            uuid.MustParse("6f1c2b1e-8a3d-4c55-9a61-2d3c4b5a6f70"),
		StartedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Elapsed:       1500 * time.Millisecond,
		CorpusSize:    100_000,
		TotalDuration: 5_000_000,
		Baseline:      "base",
		Providers:     []string{"base", "binary", "flaky"},
		Scenarios: []bench.ScenarioResult{
			{
				Scenario:  bench.SinglePoint,
				Weight:    0.15,
				Positions: 10,
				ByProvider: map[string]bench.Measurement{
					"base":   ok(200, 250, 300),
					"binary": ok(100, 120, 150),
					"flaky":  {Err: bench.ErrProviderFailed},
				},
			},
		},
	}
	res.Scores = bench.Score(res)
	return res
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, fixture()))
	out := buf.String()

	assert.Contains(t, out, "## Single point\n")
	assert.Contains(t, out, "| Provider | Avg (ns) | P95 (ns) | P99 (ns) | vs base |")
	assert.Contains(t, out, "| base | 200 | 250 | 300 | 0.00% |")
	assert.Contains(t, out, "| binary | 100 | 120 | 150 | 100.00% |")
	assert.Contains(t, out, "| flaky | FAILED | FAILED | FAILED | n/a |")
	assert.Contains(t, out, "| 1 | binary | 0.3000 |")
	assert.Contains(t, out, "| 2 | base | 0.1500 |")
	assert.Contains(t, out, "| 3 | flaky (incomplete) | 0.0000 |")

	assert.Less(t, strings.Index(out, "## Single point"), strings.Index(out, "## Composite score"))
}

func TestWriteMarkdownDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, WriteMarkdown(&a, fixture()))
	require.NoError(t, WriteMarkdown(&b, fixture()))
	assert.Equal(t, a.String(), b.String())
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, fixture()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "6f1c2b1e-8a3d-4c55-9a61-2d3c4b5a6f70", decoded["id"])
	assert.Equal(t, "base", decoded["baseline"])

	scenarios := decoded["scenarios"].([]any)
	require.Len(t, scenarios, 1)
	first := scenarios[0].(map[string]any)
	assert.Equal(t, "single_point", first["key"])

	providers := first["providers"].([]any)
	require.Len(t, providers, 3)
	binary := providers[1].(map[string]any)
	assert.Equal(t, "binary", binary["name"])
	assert.Equal(t, 100, binary["stats"].(map[string]any)["avg_ns"])
	assert.Contains(t, providers[2].(map[string]any)["error"], "provider failed")
}
