package timing

const (
	smallCorpusThreshold = 50   // below this a linear scan wins
	headRatio            = 0.25 // forward scan while progress is below this
	tailRatio            = 0.85 // backward scan once progress is above this
)

// ByLinearScan returns every item containing position, in corpus order.
// It is the only primitive that tolerates unsorted or overlapping corpora.
func ByLinearScan[T Interval](items []T, position int64) []T {
	var result []T
	for _, item := range items {
		if Contains(item, position) {
			if result == nil {
				result = make([]T, 0, 1)
			}
			result = append(result, item)
		}
	}
	return result
}

// ByPositionForward walks from the head and stops at the first item that
// begins after position.
//
// items must be sorted by Begin. Matches are assumed to form one contiguous
// run; the returned value is a subslice of items spanning the first to the
// last match, so a non-matching item sandwiched between two matches would be
// included.
func ByPositionForward[T Interval](items []T, position int64) []T {
	assertSorted(items)
	start, end := -1, -1
	for i, item := range items {
		if item.Begin() > position {
			break
		}
		if position <= item.End() {
			if start == -1 {
				start = i
			}
			end = i
		}
	}
	if start == -1 {
		return nil
	}
	return items[start : end+1 : end+1]
}

// ByPositionBackward walks from the tail and stops at the first item that
// ends before position. Same preconditions and result shape as
// ByPositionForward.
func ByPositionBackward[T Interval](items []T, position int64) []T {
	assertSorted(items)
	start, end := -1, -1
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		if item.End() < position {
			break
		}
		if position >= item.Begin() {
			if end == -1 {
				end = i
			}
			start = i
		}
	}
	if start == -1 {
		return nil
	}
	return items[start : end+1 : end+1]
}

// ByPositionBinary locates any one match by binary search, then expands left
// and right while neighbours still contain position. O(log n + k).
// Same preconditions and result shape as ByPositionForward.
func ByPositionBinary[T Interval](items []T, position int64) []T {
	assertSorted(items)
	idx := SearchIndex(items, position)
	if idx < 0 {
		return nil
	}
	start, end := expand(items, position, idx)
	return items[start : end+1 : end+1]
}

// SearchIndex returns the index of some item containing position, or -1.
func SearchIndex[T Interval](items []T, position int64) int {
	low, high := 0, len(items)-1
	for low <= high {
		mid := int(uint(low+high) >> 1)
		item := items[mid]
		switch {
		case position < item.Begin():
			high = mid - 1
		case position > item.End():
			low = mid + 1
		default:
			return mid
		}
	}
	return -1
}

func expand[T Interval](items []T, position int64, idx int) (start, end int) {
	start, end = idx, idx
	for start > 0 && Contains(items[start-1], position) {
		start--
	}
	for end < len(items)-1 && Contains(items[end+1], position) {
		end++
	}
	return start, end
}

// FindPreviousByBinary returns the rightmost item whose End is strictly
// before position. ok is false when no item precedes position.
func FindPreviousByBinary[T Interval](items []T, position int64) (prev T, ok bool) {
	assertSorted(items)
	low, high := 0, len(items)-1
	candidate := -1
	for low <= high {
		mid := low + (high-low)/2
		if items[mid].End() < position {
			candidate = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	if candidate == -1 {
		return prev, false
	}
	return items[candidate], true
}

// ByRange returns the items fully contained in [start, end]. Items that only
// overlap the range are excluded. Order is not exploited.
func ByRange[T Interval](items []T, start, end int64) []T {
	if len(items) == 0 {
		return nil
	}
	var result []T
	for _, item := range items {
		if item.Begin() >= start && item.End() <= end {
			result = append(result, item)
		}
	}
	return result
}

// FilterByPosition picks a primitive by corpus size and by where position
// sits in the song: linear for small corpora, forward near the head,
// backward near the tail, binary in between. Positions outside
// [first.Begin, last.End] fail fast.
func FilterByPosition[T Interval](items []T, position int64) []T {
	n := len(items)
	if n == 0 {
		return nil
	}
	first, last := items[0], items[n-1]
	if position < first.Begin() || position > last.End() {
		return nil
	}
	if n < smallCorpusThreshold {
		return ByLinearScan(items, position)
	}

	var progress float64
	if total := last.End(); total > 0 {
		progress = float64(position) / float64(total)
	}
	switch {
	case progress < headRatio:
		return ByPositionForward(items, position)
	case progress > tailRatio:
		return ByPositionBackward(items, position)
	default:
		return ByPositionBinary(items, position)
	}
}

// FilterByPositionOrPrevious returns the active items, or during a gap the
// last item that already ended. Before the first line nothing is returned.
func FilterByPositionOrPrevious[T Interval](items []T, position int64) []T {
	if len(items) == 0 {
		return nil
	}
	if current := FilterByPosition(items, position); len(current) > 0 {
		return current
	}
	last := items[len(items)-1]
	if position > last.End() {
		return []T{last}
	}
	if position < items[0].Begin() {
		return nil
	}
	if prev, ok := FindPreviousByBinary(items, position); ok {
		return []T{prev}
	}
	return nil
}
