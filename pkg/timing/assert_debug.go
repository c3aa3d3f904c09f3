//go:build timingdebug

package timing

// assertSorted panics on unsorted input. Enabled with -tags timingdebug.
func assertSorted[T Interval](items []T) {
	if err := Validate(items); err != nil {
		panic(err)
	}
}
