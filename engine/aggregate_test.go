package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rushteam/itemsim/core"
)

func TestAggregate_MergeDoesNotAliasInput(t *testing.T) {
	pair := core.ItemPair{A: 1, B: 2}
	left, right := NewAggregate(), NewAggregate()
	left.Add(core.PairRating{Pair: pair, RatingA: 5, RatingB: 4})
	right.Add(core.PairRating{Pair: pair, RatingA: 3, RatingB: 3})
	right.Add(core.PairRating{Pair: core.ItemPair{A: 2, B: 3}, RatingA: 1, RatingB: 2})

	total := NewAggregate()
	total.Merge(left)
	total.Merge(right)

	assert.Equal(t, []core.PairStatistic{
		{Pair: pair, SumProduct: 29, SumSquareA: 34, SumSquareB: 25, SampleCount: 2},
		{Pair: core.ItemPair{A: 2, B: 3}, SumProduct: 2, SumSquareA: 1, SumSquareB: 4, SampleCount: 1},
	}, total.Statistics())

	// 输入的部分结果保持不变
	assert.Equal(t, int64(1), left[pair].SampleCount)
	assert.Equal(t, int64(1), right[core.ItemPair{A: 2, B: 3}].SampleCount)
}

func TestBucketOf(t *testing.T) {
	pair := core.ItemPair{A: 10, B: 20}
	assert.Equal(t, BucketOf(pair, 8), BucketOf(pair, 8))
	for _, n := range []int{1, 3, 8, 64} {
		b := BucketOf(pair, n)
		assert.GreaterOrEqual(t, b, 0)
		assert.Less(t, b, n)
	}
}
