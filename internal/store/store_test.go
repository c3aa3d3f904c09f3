package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyricbench/internal/bench"
)

type fakeKV struct {
	hashes  map[string]map[string]string
	zsets   map[string]map[string]float64
	ttls    map[string]time.Duration
	failSet bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		hashes: map[string]map[string]string{},
		zsets:  map[string]map[string]float64{},
		ttls:   map[string]time.Duration{},
	}
}

func (f *fakeKV) HSet(_ context.Context, key string, values map[string]interface{}) error {
	if f.failSet {
		return errors.New("connection refused")
	}
	h, ok := f.hashes[key]
	if !ok {
		h = map[string]string{}
		f.hashes[key] = h
	}
	for k, v := range values {
		h[k] = fmt.Sprint(v)
	}
	return nil
}

func (f *fakeKV) HGetAll(_ context.Context, key string) (map[string]string, error) {
	return f.hashes[key], nil
}

func (f *fakeKV) ZAdd(_ context.Context, key string, score float64, member string) error {
	z, ok := f.zsets[key]
	if !ok {
		z = map[string]float64{}
		f.zsets[key] = z
	}
	z[member] = score
	return nil
}

func (f *fakeKV) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.ttls[key] = ttl
	return nil
}

func result() *bench.Result {
	res := &bench.Result{
		ID:         uuid.New(),
		StartedAt:  time.Unix(1_700_000_000, 0),
		Baseline:   "base",
		Providers:  []string{"base", "binary"},
		CorpusSize: 10,
		Scenarios: []bench.ScenarioResult{{
			Scenario: bench.Continuous,
			Weight:   1,
			ByProvider: map[string]bench.Measurement{
				"base":   {Stats: bench.LatencyStats{Avg: 100, P95: 120, P99: 130}},
				"binary": {Err: bench.ErrProviderFailed},
			},
		}},
	}
	res.Scores = bench.Score(res)
	return res
}

func TestSave(t *testing.T) {
	kv := newFakeKV()
	s := NewResultStore(kv, time.Hour)
	res := result()

	require.NoError(t, s.Save(context.Background(), res))

	key := s.RunKey(res.ID.String())
	h := kv.hashes[key]
	require.NotNil(t, h)
	assert.Equal(t, "base", h["baseline"])
	assert.Equal(t, "base,binary", h["providers"])
	assert.Equal(t, "100", h["continuous:base:avg_ns"])
	assert.Equal(t, "130", h["continuous:base:p99_ns"])
	assert.Contains(t, h["continuous:binary:error"], "provider failed")
	_, hasLatency := h["continuous:binary:avg_ns"]
	assert.False(t, hasLatency)

	assert.Equal(t, time.Hour, kv.ttls[key])
	assert.Equal(t, float64(1_700_000_000), kv.zsets[s.IndexKey()][res.ID.String()])

	scores, err := s.Scores(context.Background(), res.ID.String())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"base": 1, "binary": 0}, scores)
}

func TestSaveError(t *testing.T) {
	kv := newFakeKV()
	kv.failSet = true
	err := NewResultStore(kv, 0).Save(context.Background(), result())
	assert.ErrorContains(t, err, "connection refused")
}

func TestScoresMissingRun(t *testing.T) {
	_, err := NewResultStore(newFakeKV(), 0).Scores(context.Background(), "nope")
	assert.ErrorContains(t, err, "not found")
}
