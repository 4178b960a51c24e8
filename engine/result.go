package engine

import (
	"context"
	"sort"
	"time"

	"github.com/rushteam/itemsim/core"
)

// Result 是一次批处理的完整输出，同时实现 core.SimilarityIndex。
// 构建完成后只读，可以被并发查询。
type Result struct {
	RunID          string
	ZeroNorm       ZeroNormPolicy
	EmittedPairs   int64
	StartedAt      time.Time
	MapDuration    time.Duration
	ReduceDuration time.Duration

	stats     []core.PairStatistic
	results   []core.SimilarityResult
	byPair    map[core.ItemPair]int // -> stats 下标
	neighbors map[int64][]core.SimilarityResult
	items     map[int64]struct{}
}

func newResult(runID string, policy ZeroNormPolicy, outs []reduceOutput) *Result {
	res := &Result{
		RunID:     runID,
		ZeroNorm:  policy,
		byPair:    make(map[core.ItemPair]int),
		neighbors: make(map[int64][]core.SimilarityResult),
		items:     make(map[int64]struct{}),
	}
	for _, out := range outs {
		res.stats = append(res.stats, out.stats...)
		res.results = append(res.results, out.results...)
	}
	sortStatistics(res.stats)
	sort.Slice(res.results, func(i, j int) bool {
		if res.results[i].ItemA != res.results[j].ItemA {
			return res.results[i].ItemA < res.results[j].ItemA
		}
		return res.results[i].ItemB < res.results[j].ItemB
	})

	for i, st := range res.stats {
		res.byPair[st.Pair] = i
		res.items[st.Pair.A] = struct{}{}
		res.items[st.Pair.B] = struct{}{}
	}
	for _, r := range res.results {
		res.neighbors[r.ItemA] = append(res.neighbors[r.ItemA], r)
		res.neighbors[r.ItemB] = append(res.neighbors[r.ItemB], r)
	}
	return res
}

func (r *Result) Name() string { return "engine.result" }

// Neighbors 实现 core.SimilarityIndex。
func (r *Result) Neighbors(_ context.Context, itemID int64) ([]core.SimilarityResult, error) {
	ns := r.neighbors[itemID]
	out := make([]core.SimilarityResult, len(ns))
	copy(out, ns)
	return out, nil
}

// HasItem 实现 core.SimilarityIndex：物品至少出现在一个物品对中。
func (r *Result) HasItem(_ context.Context, itemID int64) (bool, error) {
	_, ok := r.items[itemID]
	return ok, nil
}

// Statistic 返回某个物品对的统计量。
func (r *Result) Statistic(a, b int64) (core.PairStatistic, bool) {
	if a == b {
		return core.PairStatistic{}, false
	}
	i, ok := r.byPair[core.NewItemPair(a, b)]
	if !ok {
		return core.PairStatistic{}, false
	}
	return r.stats[i], true
}

// Statistics 按 (A, B) 升序返回全部统计量。
func (r *Result) Statistics() []core.PairStatistic { return r.stats }

// Results 按 (A, B) 升序返回全部可打分结果。
func (r *Result) Results() []core.SimilarityResult { return r.results }

// PairCount 返回出现过的不同物品对数量。
func (r *Result) PairCount() int { return len(r.stats) }

var _ core.SimilarityIndex = (*Result)(nil)
