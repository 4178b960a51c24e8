package engine

import (
	"github.com/rushteam/itemsim/core"
	"github.com/rushteam/itemsim/ratings"
)

// GeneratePairs 为一个用户产出所有无序物品对（自连接，条件 itemA < itemB）。
//
// 每条记录的物品对都已规范化（A < B），同一物品的两条评分不会配对。
// u.Ratings 无重复物品时（ratings.Store 保证这一点）恰好产出 C(n,2) 条记录。
// emit 返回 false 时提前停止。
func GeneratePairs(u ratings.UserRatings, emit func(core.PairRating) bool) {
	rs := u.Ratings
	for i := 0; i < len(rs); i++ {
		for j := i + 1; j < len(rs); j++ {
			a, b := rs[i], rs[j]
			if a.ItemID == b.ItemID {
				continue
			}
			if a.ItemID > b.ItemID {
				a, b = b, a
			}
			if !emit(core.PairRating{
				Pair:    core.ItemPair{A: a.ItemID, B: b.ItemID},
				RatingA: a.Rating,
				RatingB: b.Rating,
			}) {
				return
			}
		}
	}
}

// PairCount 返回 n 个物品产出的物品对数量 C(n,2)。
func PairCount(n int) int64 {
	if n < 2 {
		return 0
	}
	return int64(n) * int64(n-1) / 2
}
