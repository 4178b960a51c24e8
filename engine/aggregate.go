package engine

import (
	"hash/fnv"
	"sort"
	"strconv"

	"github.com/rushteam/itemsim/core"
)

// Aggregate 是按物品对分组的部分统计量。
// 不同分区上计算的 Aggregate 可以按任意顺序 Merge，结果逐位一致。
type Aggregate map[core.ItemPair]*core.PairStatistic

func NewAggregate() Aggregate {
	return make(Aggregate)
}

// Add 折叠一条共现评分。
func (a Aggregate) Add(pr core.PairRating) {
	st, ok := a[pr.Pair]
	if !ok {
		st = &core.PairStatistic{Pair: pr.Pair}
		a[pr.Pair] = st
	}
	st.Add(pr.RatingA, pr.RatingB)
}

// Merge 把 other 合并进 a。other 之后不应再被合并第二次。
func (a Aggregate) Merge(other Aggregate) {
	for pair, st := range other {
		if cur, ok := a[pair]; ok {
			cur.Merge(*st)
			continue
		}
		cp := *st
		a[pair] = &cp
	}
}

// Statistics 按 (A, B) 升序返回全部统计量。
func (a Aggregate) Statistics() []core.PairStatistic {
	out := make([]core.PairStatistic, 0, len(a))
	for _, st := range a {
		out = append(out, *st)
	}
	sortStatistics(out)
	return out
}

func sortStatistics(sts []core.PairStatistic) {
	sort.Slice(sts, func(i, j int) bool {
		if sts[i].Pair.A != sts[j].Pair.A {
			return sts[i].Pair.A < sts[j].Pair.A
		}
		return sts[i].Pair.B < sts[j].Pair.B
	})
}

// BucketOf 返回物品对在 shuffle 阶段所属的 reduce 分桶。
func BucketOf(pair core.ItemPair, buckets int) int {
	h := fnv.New32a()
	var buf [40]byte
	b := strconv.AppendInt(buf[:0], pair.A, 10)
	b = append(b, ':')
	b = strconv.AppendInt(b, pair.B, 10)
	h.Write(b)
	return int(h.Sum32() % uint32(buckets))
}
