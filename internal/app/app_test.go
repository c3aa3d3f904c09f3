package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyricbench/internal/bench"
	"lyricbench/internal/config"
	"lyricbench/pkg/timing"
)

type recordingSaver struct {
	runs []*bench.Result
}

func (r *recordingSaver) Save(_ context.Context, res *bench.Result) error {
	r.runs = append(r.runs, res)
	return nil
}

func smallConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Bench.CorpusSize = 1000
	cfg.Bench.Workload = bench.Workload{
		SinglePointTrials: 50,
		FrameRates:        []int{30},
		DurationSec:       1,
		JitterCount:       300,
		JitterRadius:      100,
		ForwardStep:       500,
		SeekCount:         100,
	}
	cfg.Bench.Options = bench.Options{WarmupPasses: 1, WarmupMaxPosition: 500, WarmupStep: 5, Concurrency: 4}
	cfg.Bench.Providers = []string{"base", "binary", "navigator"}
	cfg.Bench.ReportPath = filepath.Join(dir, "report.md")
	cfg.Bench.YAMLPath = filepath.Join(dir, "out", "results.yaml")
	cfg.Bench.MetricsPath = filepath.Join(dir, "lyricbench.prom")
	return cfg
}

func TestRun(t *testing.T) {
	cfg := smallConfig(t)
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	saver := &recordingSaver{}
	a.WithSaver(saver)
	defer a.Close()

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "base", res.Baseline)
	assert.Equal(t, []string{"base", "binary", "navigator"}, res.Providers)
	assert.Len(t, res.Scenarios, len(bench.Scenarios))
	assert.Len(t, res.Scores, 3)

	md, err := os.ReadFile(cfg.Bench.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), res.ID.String())

	y, err := os.ReadFile(cfg.Bench.YAMLPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(y), "baseline: base"))

	prom, err := os.ReadFile(cfg.Bench.MetricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "lyricbench_composite_score")

	require.Len(t, saver.runs, 1)
	assert.Equal(t, res.ID, saver.runs[0].ID)
}

func TestRunLRCCorpus(t *testing.T) {
	cfg := smallConfig(t)
	lrc := filepath.Join(t.TempDir(), "song.lrc")
	require.NoError(t, os.WriteFile(lrc, []byte("[00:01.00]one\n[00:02.50]two\n[00:04.00]three\n"), 0o644))
	cfg.Bench.LRCPath = lrc
	cfg.Bench.YAMLPath = ""

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)

	lines, err := a.Corpus()
	require.NoError(t, err)
	require.Len(t, lines, 3)

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.CorpusSize)
}

func TestNewUnknownProvider(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Bench.Providers = []string{"base", "nope"}
	_, err := New(context.Background(), cfg)
	assert.ErrorIs(t, err, bench.ErrUnknownProvider)
}

func TestNewRejectsEmptyScenario(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Bench.Workload.SeekCount = -1
	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "random_seek_count")
}

func TestRunRejectsEmptyScenario(t *testing.T) {
	cfg := smallConfig(t)
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	// A one-point jitter budget splits into zero positions per hotspot.
	a.cfg.Bench.Workload.JitterCount = 1

	res, err := a.Run(context.Background())
	assert.ErrorIs(t, err, bench.ErrEmptyPlan)
	assert.Nil(t, res)
	_, statErr := os.Stat(cfg.Bench.ReportPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestReplay(t *testing.T) {
	lines := []timing.Line{
		timing.NewLine(1000, 2000, "one"),
		timing.NewLine(3000, 4000, "two"),
	}
	var pos int64
	clock := func() int64 {
		p := pos
		pos += 250
		return p
	}

	type event struct {
		pos  int64
		text []string
	}
	var events []event
	err := Replay(context.Background(), lines, clock, time.Millisecond, func(p int64, active []timing.Line) {
		var text []string
		for _, l := range active {
			text = append(text, l.Text)
		}
		events = append(events, event{p, text})
	})
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, event{1000, []string{"one"}}, events[0])
	assert.Equal(t, event{3000, []string{"two"}}, events[1])
}

func TestReplayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lines := []timing.Line{timing.NewLine(0, 10_000, "x")}
	err := Replay(ctx, lines, func() int64 { return 5 }, time.Millisecond, func(int64, []timing.Line) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReplayEmpty(t *testing.T) {
	err := Replay(context.Background(), nil, func() int64 { return 0 }, 0, func(int64, []timing.Line) {})
	assert.Error(t, err)
}
