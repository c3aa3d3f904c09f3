package bench

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"lyricbench/internal/corpus"
	"lyricbench/pkg/timing"
)

// ErrProviderFailed marks a provider that panicked while being measured. The
// whole (provider, scenario) measurement is discarded.
var ErrProviderFailed = errors.New("bench: provider failed")

// ErrEmptyPlan is returned by Run when a plan has no positions to time.
var ErrEmptyPlan = errors.New("bench: plan has no positions")

// State is the engine lifecycle: Idle -> Warmup -> Measuring -> Done.
type State int32

const (
	Idle State = iota
	Warmup
	Measuring
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Warmup:
		return "warmup"
	case Measuring:
		return "measuring"
	case Done:
		return "done"
	}
	return "unknown"
}

// Options tune warmup and fan-out.
type Options struct {
	WarmupPasses      int
	WarmupMaxPosition int64
	WarmupStep        int64
	// Concurrency caps in-flight queries per provider; <= 0 means GOMAXPROCS.
	Concurrency int
}

// DefaultOptions returns 3 warmup passes over 0..5000 step 5.
func DefaultOptions() Options {
	return Options{
		WarmupPasses:      3,
		WarmupMaxPosition: 5000,
		WarmupStep:        5,
		Concurrency:       runtime.GOMAXPROCS(0),
	}
}

// Measurement is the outcome of one (provider, scenario) pair. Exactly one
// of Stats and Err is meaningful.
type Measurement struct {
	Stats LatencyStats
	Err   error
}

// Failed reports whether the provider failed during this scenario.
func (m Measurement) Failed() bool { return m.Err != nil }

// ScenarioResult holds every provider's measurement for one scenario.
type ScenarioResult struct {
	Scenario   Scenario
	Weight     float64
	Positions  int
	ByProvider map[string]Measurement
}

// Result is a complete benchmark run. Partial runs are never returned.
type Result struct {
	ID            uuid.UUID
	StartedAt     time.Time
	Elapsed       time.Duration
	CorpusSize    int
	TotalDuration int64
	Baseline      string
	Providers     []string
	Scenarios     []ScenarioResult
	Scores        []CompositeScore
}

// Engine measures a fixed set of providers against a shared corpus.
type Engine struct {
	instances []Instance
	weights   Weights
	opts      Options
	lines     []timing.Line
	logger    zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewEngine builds every provider in reg over lines. The corpus must not be
// modified while the engine is in use.
func NewEngine(reg *Registry, lines []timing.Line, weights Weights, opts Options) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	instances, err := reg.Build(lines)
	if err != nil {
		return nil, err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		instances: instances,
		weights:   weights,
		opts:      opts,
		lines:     lines,
		logger:    log.With().Str("component", "bench-engine").Logger(),
	}, nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	e.logger.Debug().Stringer("state", s).Msg("Engine state changed")
}

// Run warms up every provider, measures each plan, and scores the result.
// ctx is checked between scenarios; a cancelled run returns no result and
// leaves the engine Done. An engine runs once.
func (e *Engine) Run(ctx context.Context, plans []Plan) (*Result, error) {
	e.mu.Lock()
	if e.state != Idle {
		e.mu.Unlock()
		return nil, fmt.Errorf("bench: engine already %s", e.state)
	}
	e.mu.Unlock()

	for _, plan := range plans {
		if len(plan.Positions) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyPlan, plan.Scenario.Key())
		}
	}

	started := time.Now()
	res := &Result{
		ID:            uuid.New(),
		StartedAt:     started,
		CorpusSize:    len(e.lines),
		TotalDuration: corpus.TotalDuration(e.lines),
		Baseline:      e.instances[0].Name,
		Providers:     make([]string, len(e.instances)),
	}
	for i, inst := range e.instances {
		res.Providers[i] = inst.Name
	}
	logger := e.logger.With().Str("run_id", res.ID.String()).Logger()

	e.setState(Warmup)
	e.warmup(logger)

	e.setState(Measuring)
	for _, plan := range plans {
		if err := ctx.Err(); err != nil {
			e.setState(Done)
			return nil, fmt.Errorf("bench: run aborted: %w", err)
		}

		logger.Info().
			Str("scenario", plan.Scenario.Label()).
			Int("positions", len(plan.Positions)).
			Bool("sequential", plan.Sequential).
			Msg("Measuring scenario")

		var byProvider map[string]Measurement
		if plan.Sequential {
			byProvider = e.measureSequential(plan)
		} else {
			byProvider = e.measureParallel(plan)
		}
		for name, m := range byProvider {
			if m.Failed() {
				logger.Error().Err(m.Err).Str("provider", name).Str("scenario", plan.Scenario.Key()).Msg("Provider failed")
				continue
			}
			logger.Debug().
				Str("provider", name).
				Str("scenario", plan.Scenario.Key()).
				Int64("avg_ns", m.Stats.Avg).
				Int64("p95_ns", m.Stats.P95).
				Int64("p99_ns", m.Stats.P99).
				Msg("Scenario stats")
		}

		res.Scenarios = append(res.Scenarios, ScenarioResult{
			Scenario:   plan.Scenario,
			Weight:     e.weights[plan.Scenario],
			Positions:  len(plan.Positions),
			ByProvider: byProvider,
		})
	}

	res.Scores = Score(res)
	res.Elapsed = time.Since(started)
	e.setState(Done)
	logger.Info().Dur("elapsed", res.Elapsed).Msg("Benchmark finished")
	return res, nil
}

// warmup queries every provider identically, sequentially. Failures are
// logged; the measurement that follows reports them per scenario.
func (e *Engine) warmup(logger zerolog.Logger) {
	step := e.opts.WarmupStep
	if step <= 0 {
		step = 1
	}
	failed := make(map[string]bool)
	for pass := 0; pass < e.opts.WarmupPasses; pass++ {
		for pos := int64(0); pos <= e.opts.WarmupMaxPosition; pos += step {
			for _, inst := range e.instances {
				if failed[inst.Name] {
					continue
				}
				if _, err := timeQuery(inst, pos); err != nil {
					failed[inst.Name] = true
					logger.Warn().Err(err).Str("provider", inst.Name).Msg("Provider failed during warmup")
				}
			}
		}
	}
	logger.Info().Int("passes", e.opts.WarmupPasses).Int("providers", len(e.instances)).Msg("Warmup complete")
}

func (e *Engine) measureSequential(plan Plan) map[string]Measurement {
	out := make(map[string]Measurement, len(e.instances))
	for _, inst := range e.instances {
		samples := make([]int64, len(plan.Positions))
		var err error
		for i, pos := range plan.Positions {
			if samples[i], err = timeQuery(inst, pos); err != nil {
				break
			}
		}
		out[inst.Name] = finish(samples, err, plan.Scenario)
	}
	return out
}

// measureParallel fans out across providers, and within each provider across
// positions. Stats are reduced only once every query of a provider returned.
func (e *Engine) measureParallel(plan Plan) map[string]Measurement {
	results := make([]Measurement, len(e.instances))

	var outer errgroup.Group
	for i, inst := range e.instances {
		i, inst := i, inst
		outer.Go(func() error {
			samples := make([]int64, len(plan.Positions))

			inner, ctx := errgroup.WithContext(context.Background())
			inner.SetLimit(e.opts.Concurrency)
			for j, pos := range plan.Positions {
				j, pos := j, pos
				inner.Go(func() error {
					if ctx.Err() != nil {
						return nil
					}
					ns, err := timeQuery(inst, pos)
					if err != nil {
						return err
					}
					samples[j] = ns
					return nil
				})
			}
			results[i] = finish(samples, inner.Wait(), plan.Scenario)
			return nil
		})
	}
	_ = outer.Wait()

	out := make(map[string]Measurement, len(e.instances))
	for i, inst := range e.instances {
		out[inst.Name] = results[i]
	}
	return out
}

func finish(samples []int64, err error, s Scenario) Measurement {
	if err != nil {
		return Measurement{Err: fmt.Errorf("%s: %w", s.Key(), err)}
	}
	if len(samples) == 0 {
		return Measurement{Err: fmt.Errorf("%s: %w", s.Key(), ErrEmptyPlan)}
	}
	return Measurement{Stats: ComputeStats(samples)}
}

// timeQuery times a single Query call. A panic inside the provider becomes
// ErrProviderFailed.
func timeQuery(inst Instance, position int64) (ns int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s at position %d: %v", ErrProviderFailed, inst.Name, position, r)
		}
	}()
	start := time.Now()
	inst.Provider.Query(position, discard)
	return time.Since(start).Nanoseconds(), nil
}

func discard(timing.Interval) {}
