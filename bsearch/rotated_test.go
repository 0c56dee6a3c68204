package bsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchRotated(t *testing.T) {
	seq := []int{4, 5, 6, 7, 0, 1, 2}
	assert.Equal(t, 4, SearchRotated(seq, 0))
	assert.Equal(t, 1, SearchRotated(seq, 5))
	assert.Equal(t, NotFound, SearchRotated(seq, 3))
	assert.Equal(t, NotFound, SearchRotated(nil, 3))

	sorted := []int{1, 2, 3, 4, 5}
	for i, v := range sorted {
		assert.Equal(t, i, SearchRotated(sorted, v))
	}
}

func TestSearchRotated_AllRotations(t *testing.T) {
	base := []int{1, 3, 5, 7, 9, 11}
	for shift := range base {
		seq := append(append([]int{}, base[shift:]...), base[:shift]...)
		for i, v := range seq {
			assert.Equal(t, i, SearchRotated(seq, v), "seq=%v", seq)
		}
		assert.Equal(t, NotFound, SearchRotated(seq, 4), "seq=%v", seq)
	}
}

func TestMinRotated(t *testing.T) {
	testCases := []struct {
		description string
		seq         []int
		expect      int
	}{
		{description: "rotated", seq: []int{3, 4, 5, 1, 2}, expect: 1},
		{description: "not rotated", seq: []int{1, 2, 3, 4, 5}, expect: 1},
		{description: "single", seq: []int{1}, expect: 1},
		{description: "two", seq: []int{2, 1}, expect: 1},
	}
	for _, tc := range testCases {
		got, ok := MinRotated(tc.seq)
		assert.True(t, ok, tc.description)
		assert.Equal(t, tc.expect, got, tc.description)
	}
	_, ok := MinRotated(nil)
	assert.False(t, ok)
}

func TestPeakElement(t *testing.T) {
	assert.Equal(t, 2, PeakElement([]int{1, 2, 3, 1}))
	assert.Equal(t, 3, PeakElement([]int{1, 2, 3, 4}))
	assert.Equal(t, 0, PeakElement([]int{4, 3, 2, 1}))
	assert.Equal(t, 0, PeakElement([]int{7}))
	assert.Equal(t, NotFound, PeakElement(nil))

	seq := []int{1, 2, 1, 3, 5, 6, 4}
	peak := PeakElement(seq)
	if peak > 0 {
		assert.Greater(t, seq[peak], seq[peak-1])
	}
	if peak < len(seq)-1 {
		assert.Greater(t, seq[peak], seq[peak+1])
	}
}
