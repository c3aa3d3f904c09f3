package timing

// Navigator is a cursor over a sorted corpus tuned for playback: it remembers
// the last matched index so steady forward playback resolves in O(1) and only
// falls back to binary search after a seek.
//
// A Navigator is not safe for concurrent use.
type Navigator[T Interval] struct {
	items        []T
	lastIndex    int
	lastPosition int64
}

// NewNavigator returns a cursor over items, which must be sorted by Begin.
func NewNavigator[T Interval](items []T) *Navigator[T] {
	assertSorted(items)
	return &Navigator[T]{items: items, lastPosition: -1}
}

// Len returns the corpus size.
func (n *Navigator[T]) Len() int { return len(n.items) }

// FindAt calls fn for every item containing position, in corpus order, and
// returns the number of matches.
func (n *Navigator[T]) FindAt(position int64, fn func(T)) int {
	size := len(n.items)
	if size == 0 {
		return 0
	}

	if position < n.items[0].Begin() {
		n.lastIndex, n.lastPosition = 0, position
		return 0
	}
	if position > n.items[size-1].End() {
		n.lastIndex, n.lastPosition = size-1, position
		return 0
	}

	// Playback moving forward: the cached line or the one after it.
	if idx := n.lastIndex; position >= n.lastPosition && idx < size {
		if Contains(n.items[idx], position) {
			n.lastPosition = position
			return n.emit(position, idx, fn)
		}
		if next := idx + 1; next < size && Contains(n.items[next], position) {
			n.lastIndex, n.lastPosition = next, position
			return n.emit(position, next, fn)
		}
	}

	match := SearchIndex(n.items, position)
	n.lastPosition = position
	if match < 0 {
		return 0
	}
	n.lastIndex = match
	return n.emit(position, match, fn)
}

// LookupOrPrevious behaves like FindAt, but during a gap between lines it
// reports the last line that already ended.
func (n *Navigator[T]) LookupOrPrevious(position int64, fn func(T)) int {
	if found := n.FindAt(position, fn); found > 0 {
		return found
	}
	if prev, ok := n.FindPrevious(position); ok {
		fn(prev)
		return 1
	}
	return 0
}

// FindPrevious returns the last item ending before position.
func (n *Navigator[T]) FindPrevious(position int64) (prev T, ok bool) {
	size := len(n.items)
	if size == 0 || position < n.items[0].Begin() {
		return prev, false
	}
	if position > n.items[size-1].End() {
		return n.items[size-1], true
	}
	return FindPreviousByBinary(n.items, position)
}

// Reset forgets the cached cursor, e.g. after the song changes.
func (n *Navigator[T]) Reset() {
	n.lastIndex = 0
	n.lastPosition = -1
}

// emit walks left from match while items still contain position, then calls
// fn forward until an item begins after position.
func (n *Navigator[T]) emit(position int64, match int, fn func(T)) int {
	start := match
	for start > 0 && Contains(n.items[start-1], position) {
		start--
	}
	count := 0
	for i := start; i < len(n.items); i++ {
		item := n.items[i]
		if position < item.Begin() {
			break
		}
		if position <= item.End() {
			fn(item)
			count++
		}
	}
	return count
}
