// Package timing answers "which lines are active at playback position P"
// over time-indexed lyric data.
//
// Positions and interval bounds are milliseconds. Containment is inclusive on
// both ends, so a position that lands exactly on the boundary between two
// abutting lines matches both of them.
package timing

import (
	"errors"
	"fmt"
)

// ErrNotSorted is returned by Validate when a corpus is not ordered by Begin.
var ErrNotSorted = errors.New("timing: corpus not sorted by begin")

// Interval is the minimal shape every queryable item exposes.
// Begin <= End is expected; Duration is informational (End - Begin).
type Interval interface {
	Begin() int64
	End() int64
	Duration() int64
}

// Line is a lyric line with its timing window.
type Line struct {
	Start  int64  `json:"begin" yaml:"begin"`
	Stop   int64  `json:"end" yaml:"end"`
	Length int64  `json:"duration" yaml:"duration"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
}

// NewLine builds a line spanning [begin, end].
func NewLine(begin, end int64, text string) Line {
	return Line{Start: begin, Stop: end, Length: end - begin, Text: text}
}

func (l Line) Begin() int64    { return l.Start }
func (l Line) End() int64      { return l.Stop }
func (l Line) Duration() int64 { return l.Length }

func (l Line) String() string {
	return fmt.Sprintf("[%d,%d]", l.Start, l.Stop)
}

// Contains reports whether position falls inside [begin, end].
func Contains[T Interval](item T, position int64) bool {
	return item.Begin() <= position && position <= item.End()
}

// IsSorted reports whether items are non-decreasing by Begin.
func IsSorted[T Interval](items []T) bool {
	for i := 1; i < len(items); i++ {
		if items[i].Begin() < items[i-1].Begin() {
			return false
		}
	}
	return true
}

// Validate checks the preconditions of the pruned and binary primitives:
// ascending order by Begin and Begin <= End for every item.
func Validate[T Interval](items []T) error {
	for i, item := range items {
		if item.Begin() > item.End() {
			return fmt.Errorf("timing: item %d has begin %d after end %d", i, item.Begin(), item.End())
		}
		if i > 0 && item.Begin() < items[i-1].Begin() {
			return fmt.Errorf("%w: item %d begins at %d, before item %d at %d",
				ErrNotSorted, i, item.Begin(), i-1, items[i-1].Begin())
		}
	}
	return nil
}
