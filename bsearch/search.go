package bsearch

// NotFound is returned by the index-returning routines when the target is absent.
const NotFound = -1

// Search returns the index of target in the ascending slice seq, or NotFound.
// When target occurs more than once, the index of any occurrence may be
// returned. Search does not allocate and only reads seq.
func Search(seq []int, target int) int {
	left, right := 0, len(seq)-1
	for left <= right {
		mid := left + (right-left)/2
		if seq[mid] > target {
			right = mid - 1
		} else if seq[mid] < target {
			left = mid + 1
		} else {
			return mid
		}
	}
	return NotFound
}

// Find is Search with an explicit presence flag.
func Find(seq []int, target int) (int, bool) {
	i := Search(seq, target)
	return i, i != NotFound
}

// FirstOccurrence returns the leftmost index of target in seq, or NotFound.
func FirstOccurrence(seq []int, target int) int {
	left, right := 0, len(seq)-1
	location := NotFound
	for left <= right {
		mid := left + (right-left)/2
		switch {
		case target > seq[mid]:
			left = mid + 1
		case target < seq[mid]:
			right = mid - 1
		default:
			location = mid
			right = mid - 1
		}
	}
	return location
}

// LastOccurrence returns the rightmost index of target in seq, or NotFound.
func LastOccurrence(seq []int, target int) int {
	left, right := 0, len(seq)-1
	location := NotFound
	for left <= right {
		mid := left + (right-left)/2
		switch {
		case target > seq[mid]:
			left = mid + 1
		case target < seq[mid]:
			right = mid - 1
		default:
			location = mid
			left = mid + 1
		}
	}
	return location
}

// InsertPosition returns the index of target when present, otherwise the
// index at which inserting target keeps seq sorted. The result is in
// [0, len(seq)].
func InsertPosition(seq []int, target int) int {
	left, right := 0, len(seq)-1
	for left <= right {
		mid := left + (right-left)/2
		switch {
		case target > seq[mid]:
			left = mid + 1
		case target < seq[mid]:
			right = mid - 1
		default:
			return mid
		}
	}
	return left
}
