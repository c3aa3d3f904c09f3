// Package strategy holds the built-in lyric position lookups that compete in
// the benchmark.
package strategy

import (
	"sync"

	"lyricbench/internal/bench"
	"lyricbench/pkg/timing"
)

// Built-in provider names, in default registration order. Base comes first
// and is therefore the baseline.
const (
	Base              = "base"
	Linear            = "linear"
	Forward           = "forward"
	Backward          = "backward"
	Binary            = "binary"
	Hybrid            = "hybrid"
	Navigator         = "navigator"
	NavigatorPrevious = "navigator-previous"
)

// NewRegistry returns a registry holding every built-in strategy.
func NewRegistry() *bench.Registry {
	reg := bench.NewRegistry()
	Register(reg)
	return reg
}

// Register adds the built-in strategies to reg.
func Register(reg *bench.Registry) {
	reg.MustRegister(Base, func(lines []timing.Line) bench.Provider { return &halfOpenBinary{lines: lines} })
	reg.MustRegister(Linear, primitive(timing.ByLinearScan[timing.Line]))
	reg.MustRegister(Forward, primitive(timing.ByPositionForward[timing.Line]))
	reg.MustRegister(Backward, primitive(timing.ByPositionBackward[timing.Line]))
	reg.MustRegister(Binary, primitive(timing.ByPositionBinary[timing.Line]))
	reg.MustRegister(Hybrid, primitive(timing.FilterByPosition[timing.Line]))
	reg.MustRegister(Navigator, func(lines []timing.Line) bench.Provider {
		return &cursor{nav: timing.NewNavigator(lines)}
	})
	reg.MustRegister(NavigatorPrevious, func(lines []timing.Line) bench.Provider {
		return &cursor{nav: timing.NewNavigator(lines), orPrevious: true}
	})
}

// primitive wraps a pure slice-returning lookup.
func primitive(lookup func([]timing.Line, int64) []timing.Line) bench.Factory {
	return func(lines []timing.Line) bench.Provider {
		return bench.ProviderFunc(func(position int64, onMatch func(timing.Interval)) {
			for _, l := range lookup(lines, position) {
				onMatch(l)
			}
		})
	}
}

// halfOpenBinary treats lines as [begin, end): a boundary position belongs to
// the later line only. It walks outward from the probe without allocating.
type halfOpenBinary struct {
	lines []timing.Line
}

func (h *halfOpenBinary) Query(position int64, onMatch func(timing.Interval)) {
	lines := h.lines
	left, right := 0, len(lines)-1
	found := -1
	for left <= right && found < 0 {
		mid := left + (right-left)/2
		item := lines[mid]
		switch {
		case position < item.Begin():
			right = mid - 1
		case position >= item.End():
			left = mid + 1
		default:
			found = mid
		}
	}
	if found < 0 {
		return
	}

	start := found
	for start > 0 && inHalfOpen(lines[start-1], position) {
		start--
	}
	for i := start; i < len(lines) && inHalfOpen(lines[i], position); i++ {
		onMatch(lines[i])
	}
}

func inHalfOpen(l timing.Line, position int64) bool {
	return l.Begin() <= position && position < l.End()
}

// cursor serializes access to a Navigator, which keeps playback state.
type cursor struct {
	mu         sync.Mutex
	nav        *timing.Navigator[timing.Line]
	orPrevious bool
}

func (c *cursor) Query(position int64, onMatch func(timing.Interval)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	emit := func(l timing.Line) { onMatch(l) }
	if c.orPrevious {
		c.nav.LookupOrPrevious(position, emit)
		return
	}
	c.nav.FindAt(position, emit)
}
