package bsearch

import (
	"fmt"
	"math"
)

// MinEatingSpeed returns the smallest integer rate k such that finishing
// every pile at k units per hour, one pile at a time with partial hours
// rounded up, takes at most hours.
func MinEatingSpeed(piles []int, hours int) (int, error) {
	if hours < len(piles) {
		return 0, fmt.Errorf("bsearch: %d hours cannot cover %d piles", hours, len(piles))
	}
	high := 1
	for _, p := range piles {
		if p < 0 {
			return 0, fmt.Errorf("bsearch: negative pile %d", p)
		}
		if p > high {
			high = p
		}
	}
	low := 1
	for low < high {
		mid := low + (high-low)/2
		if fitsHours(piles, mid, hours) {
			high = mid
		} else {
			low = mid + 1
		}
	}
	return low, nil
}

// fitsHours reports whether eating piles at rate takes at most hours. The
// running total is compared against the remaining budget, so it never overflows.
func fitsHours(piles []int, rate, hours int) bool {
	left := hours
	for _, p := range piles {
		need := p / rate
		if p%rate != 0 {
			need++
		}
		if need > left {
			return false
		}
		left -= need
	}
	return true
}

// ShipCapacity returns the least capacity that ships weights, in order,
// within days. Each day loads consecutive weights up to the capacity.
func ShipCapacity(weights []int, days int) (int, error) {
	if days < 1 {
		return 0, fmt.Errorf("bsearch: days must be positive, got %d", days)
	}
	low, high := 0, 0
	for _, w := range weights {
		if w < 0 {
			return 0, fmt.Errorf("bsearch: negative weight %d", w)
		}
		if w > low {
			low = w
		}
		if high > math.MaxInt-w {
			high = math.MaxInt
		} else {
			high += w
		}
	}
	if high == math.MaxInt && !fitsDays(weights, high, days) {
		return 0, fmt.Errorf("bsearch: required capacity exceeds int range")
	}
	for low < high {
		mid := low + (high-low)/2
		if fitsDays(weights, mid, days) {
			high = mid
		} else {
			low = mid + 1
		}
	}
	return low, nil
}

// fitsDays reports whether weights ship within days at capacity. It requires
// capacity >= every weight.
func fitsDays(weights []int, capacity, days int) bool {
	used, load := 1, 0
	for _, w := range weights {
		if w > capacity-load {
			used++
			load = 0
			if used > days {
				return false
			}
		}
		load += w
	}
	return true
}
