package rank

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/itemsim/core"
	"github.com/rushteam/itemsim/pipeline"
)

// ScoreSortNode 按相似度降序排序。
//
// 相似度完全相等时的次序：样本数多的在前，再按物品 id 升序。
// 排序键覆盖了全部字段，因此同一输入在任意次运行中输出顺序一致。
type ScoreSortNode struct{}

func (n *ScoreSortNode) Name() string        { return "rank.score" }
func (n *ScoreSortNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ScoreSortNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return Less(out[i], out[j])
	})
	for i, it := range out {
		it.PutLabel("rank_position", core.Label{Value: strconv.Itoa(i + 1), Source: "rank"})
	}
	return out, nil
}

// Less 是排序规则：score 降序 → samples 降序 → id 升序。
func Less(a, b *core.Item) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.SampleCount != b.SampleCount {
		return a.SampleCount > b.SampleCount
	}
	return a.ID < b.ID
}
