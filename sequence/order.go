package sequence

import (
	"errors"
	"slices"
)

// ErrNotSorted reports a sequence that is expected to be ascending but is not.
var ErrNotSorted = errors.New("sequence: values are not in ascending order")

// IsSorted reports whether values are in non-decreasing order.
func IsSorted(values []int) bool {
	for i := 1; i < len(values); i++ {
		if values[i-1] > values[i] {
			return false
		}
	}
	return true
}

// Normalize returns an ascending copy of values. The input is not modified.
func Normalize(values []int) []int {
	if len(values) == 0 {
		return nil
	}
	out := slices.Clone(values)
	slices.Sort(out)
	return out
}

// CheckSorted returns ErrNotSorted when values are not ascending.
func CheckSorted(values []int) error {
	if !IsSorted(values) {
		return ErrNotSorted
	}
	return nil
}
