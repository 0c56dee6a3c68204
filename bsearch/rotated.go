package bsearch

// SearchRotated returns the index of target in seq, an ascending slice of
// distinct values rotated at an unknown pivot, or NotFound.
func SearchRotated(seq []int, target int) int {
	left, right := 0, len(seq)-1
	for left <= right {
		mid := left + (right-left)/2
		if seq[mid] == target {
			return mid
		}
		if seq[left] <= seq[mid] {
			// left half is ordered
			if seq[left] <= target && target < seq[mid] {
				right = mid - 1
			} else {
				left = mid + 1
			}
		} else {
			if seq[mid] < target && target <= seq[right] {
				left = mid + 1
			} else {
				right = mid - 1
			}
		}
	}
	return NotFound
}

// MinRotated returns the smallest value of a rotated ascending slice of
// distinct values. The flag is false for an empty slice.
func MinRotated(seq []int) (int, bool) {
	if len(seq) == 0 {
		return 0, false
	}
	left, right := 0, len(seq)-1
	for left < right {
		mid := left + (right-left)/2
		if seq[mid] > seq[right] {
			left = mid + 1
		} else {
			right = mid
		}
	}
	return seq[left], true
}

// PeakElement returns the index of an element strictly greater than its
// neighbours, treating positions outside seq as negative infinity. It returns
// NotFound for an empty slice. Adjacent elements are expected to differ.
func PeakElement(seq []int) int {
	if len(seq) == 0 {
		return NotFound
	}
	left, right := 0, len(seq)-1
	for left < right {
		mid := left + (right-left)/2
		if seq[mid] < seq[mid+1] {
			left = mid + 1
		} else {
			right = mid
		}
	}
	return left
}
