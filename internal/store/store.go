// Package store persists benchmark runs to Redis so successive runs can be
// compared.
package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lyricbench/internal/bench"
)

const (
	DefaultPrefix = "lyricbench:"
	scorePrefix   = "score:"
)

// KV is the subset of Redis commands the store relies on; *redis.Client from
// lyricbench/pkg/redis satisfies it.
type KV interface {
	HSet(ctx context.Context, key string, values map[string]interface{}) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	ZAdd(ctx context.Context, key string, score float64, member string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// ResultStore writes one hash per run plus a time-ordered index of run IDs.
type ResultStore struct {
	kv     KV
	prefix string
	ttl    time.Duration
	logger zerolog.Logger
}

func NewResultStore(kv KV, ttl time.Duration) *ResultStore {
	return &ResultStore{
		kv:     kv,
		prefix: DefaultPrefix,
		ttl:    ttl,
		logger: log.With().Str("component", "result-store").Logger(),
	}
}

// RunKey is the hash holding a run's fields.
func (s *ResultStore) RunKey(id string) string { return s.prefix + "run:" + id }

// IndexKey is the sorted set of run IDs scored by start time.
func (s *ResultStore) IndexKey() string { return s.prefix + "runs" }

// Save stores res. Failed measurements are stored as their error text.
func (s *ResultStore) Save(ctx context.Context, res *bench.Result) error {
	id := res.ID.String()
	fields := map[string]interface{}{
		"baseline":          res.Baseline,
		"providers":         strings.Join(res.Providers, ","),
		"corpus_size":       res.CorpusSize,
		"total_duration_ms": res.TotalDuration,
		"started_at":        res.StartedAt.UTC().Format(time.RFC3339Nano),
		"elapsed_ms":        res.Elapsed.Milliseconds(),
	}
	for _, sc := range res.Scores {
		fields[scorePrefix+sc.Provider] = strconv.FormatFloat(sc.Score, 'f', 6, 64)
	}
	for _, sr := range res.Scenarios {
		for name, m := range sr.ByProvider {
			base := sr.Scenario.Key() + ":" + name + ":"
			if m.Failed() {
				fields[base+"error"] = m.Err.Error()
				continue
			}
			fields[base+"avg_ns"] = m.Stats.Avg
			fields[base+"p95_ns"] = m.Stats.P95
			fields[base+"p99_ns"] = m.Stats.P99
		}
	}

	key := s.RunKey(id)
	if err := s.kv.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("store: write run %s: %w", id, err)
	}
	if err := s.kv.Expire(ctx, key, s.ttl); err != nil {
		return fmt.Errorf("store: expire run %s: %w", id, err)
	}
	if err := s.kv.ZAdd(ctx, s.IndexKey(), float64(res.StartedAt.Unix()), id); err != nil {
		return fmt.Errorf("store: index run %s: %w", id, err)
	}

	s.logger.Info().Str("run_id", id).Str("key", key).Int("fields", len(fields)).Msg("Saved benchmark run")
	return nil
}

// Scores reads back the composite scores of a stored run.
func (s *ResultStore) Scores(ctx context.Context, id string) (map[string]float64, error) {
	fields, err := s.kv.HGetAll(ctx, s.RunKey(id))
	if err != nil {
		return nil, fmt.Errorf("store: read run %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("store: run %s not found", id)
	}
	scores := make(map[string]float64)
	for field, value := range fields {
		name, ok := strings.CutPrefix(field, scorePrefix)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("store: run %s: score %s: %w", id, name, err)
		}
		scores[name] = v
	}
	return scores, nil
}
