package bench

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidWeights is returned when scenario weights are out of (0,1] or do
// not sum to 1.
var ErrInvalidWeights = errors.New("bench: invalid scenario weights")

const weightTolerance = 1e-9

// Scenario is one access pattern the providers are measured under.
type Scenario int

const (
	SinglePoint Scenario = iota
	Continuous
	RandomSeek
	HotJitter
	ForwardSeek
)

// Scenarios lists every scenario in report order.
var Scenarios = []Scenario{SinglePoint, Continuous, RandomSeek, HotJitter, ForwardSeek}

var scenarioInfo = map[Scenario]struct {
	key, label string
	weight     float64
}{
	SinglePoint: {"single_point", "Single point", 0.15},
	Continuous:  {"continuous", "Continuous playback", 0.35},
	RandomSeek:  {"random_seek", "Random seek", 0.30},
	HotJitter:   {"hot_jitter", "Hotspot jitter", 0.15},
	ForwardSeek: {"forward_seek", "Forward seek", 0.05},
}

// Key is the snake_case identifier used in config and exports.
func (s Scenario) Key() string {
	if info, ok := scenarioInfo[s]; ok {
		return info.key
	}
	return fmt.Sprintf("scenario_%d", int(s))
}

// Label is the human-readable report title.
func (s Scenario) Label() string {
	if info, ok := scenarioInfo[s]; ok {
		return info.label
	}
	return s.Key()
}

func (s Scenario) String() string { return s.Key() }

// MarshalText encodes the scenario as its key.
func (s Scenario) MarshalText() ([]byte, error) { return []byte(s.Key()), nil }

// ParseScenario resolves a key back to its scenario.
func ParseScenario(key string) (Scenario, error) {
	for _, s := range Scenarios {
		if s.Key() == key {
			return s, nil
		}
	}
	return 0, fmt.Errorf("bench: unknown scenario %q", key)
}

// Weights maps each scenario to its share of the composite score.
type Weights map[Scenario]float64

// DefaultWeights returns 0.15/0.35/0.30/0.15/0.05 in scenario order.
func DefaultWeights() Weights {
	w := make(Weights, len(Scenarios))
	for _, s := range Scenarios {
		w[s] = scenarioInfo[s].weight
	}
	return w
}

// Sum adds up all weights.
func (w Weights) Sum() float64 {
	var sum float64
	for _, s := range Scenarios {
		sum += w[s]
	}
	return sum
}

// Validate requires every scenario to carry a weight in (0,1] and the total
// to be 1 within floating tolerance.
func (w Weights) Validate() error {
	for _, s := range Scenarios {
		v, ok := w[s]
		if !ok {
			return fmt.Errorf("%w: missing weight for %s", ErrInvalidWeights, s)
		}
		if v <= 0 || v > 1 {
			return fmt.Errorf("%w: %s weight %g not in (0,1]", ErrInvalidWeights, s, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %g", ErrInvalidWeights, sum)
	}
	return nil
}
