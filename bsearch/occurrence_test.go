package bsearch

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstOccurrence(t *testing.T) {
	assert.Equal(t, 1, FirstOccurrence([]int{1, 2, 2, 2, 3}, 2))
	assert.Equal(t, 2, FirstOccurrence([]int{1, 2, 3, 4, 5}, 3))
	assert.Equal(t, NotFound, FirstOccurrence([]int{1, 2, 3}, 5))
	assert.Equal(t, 0, FirstOccurrence([]int{2, 2, 2, 3}, 2))
	assert.Equal(t, NotFound, FirstOccurrence(nil, 2))
}

func TestLastOccurrence(t *testing.T) {
	assert.Equal(t, 3, LastOccurrence([]int{1, 2, 2, 2, 3}, 2))
	assert.Equal(t, 4, LastOccurrence([]int{1, 2, 3, 3, 3}, 3))
	assert.Equal(t, NotFound, LastOccurrence([]int{1, 2, 3}, 0))
	assert.Equal(t, NotFound, LastOccurrence(nil, 2))
}

func TestInsertPosition(t *testing.T) {
	testCases := []struct {
		target int
		expect int
	}{
		{target: 5, expect: 2},
		{target: 2, expect: 1},
		{target: 7, expect: 4},
		{target: 0, expect: 0},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expect, InsertPosition([]int{1, 3, 5, 6}, tc.target), "target %d", tc.target)
	}
	assert.Equal(t, 0, InsertPosition(nil, 3))
}

func TestOccurrences_MatchLinearScan(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for round := 0; round < 300; round++ {
		seq := make([]int, rng.IntN(40))
		for i := range seq {
			seq[i] = rng.IntN(10)
		}
		slices.Sort(seq)
		target := rng.IntN(12) - 1
		first, last := NotFound, NotFound
		for i, v := range seq {
			if v == target {
				if first == NotFound {
					first = i
				}
				last = i
			}
		}
		require.Equal(t, first, FirstOccurrence(seq, target), "seq=%v target=%d", seq, target)
		require.Equal(t, last, LastOccurrence(seq, target), "seq=%v target=%d", seq, target)

		pos := InsertPosition(seq, target)
		grown := slices.Insert(slices.Clone(seq), pos, target)
		require.True(t, slices.IsSorted(grown), "seq=%v target=%d pos=%d", seq, target, pos)
	}
}
