package recall

import (
	"context"

	"github.com/rushteam/itemsim/core"
	"github.com/rushteam/itemsim/pipeline"
)

// I2IRecall 是物品相似度召回源（Item-to-Item）：
// 取出所有包含查询物品的相似度结果，并解析为 "另一个" 物品。
//
// I2IRecall 同时实现了 Source 和 Node 接口，可以直接作为 Pipeline 的第一个节点。
type I2IRecall struct {
	Index core.SimilarityIndex
}

func (r *I2IRecall) Name() string        { return "recall.i2i" }
func (r *I2IRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，忽略上游 items。
func (r *I2IRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *I2IRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Index == nil || rctx == nil || rctx.ItemID <= 0 {
		return nil, nil
	}

	neighbors, err := r.Index.Neighbors(ctx, rctx.ItemID)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(neighbors))
	for _, res := range neighbors {
		if !res.Pair().Contains(rctx.ItemID) || res.ItemA == res.ItemB {
			continue
		}
		it := core.NewItem(res.Other(rctx.ItemID))
		it.Score = res.Score
		it.SampleCount = res.SampleCount
		it.PutLabel("recall_source", core.Label{Value: "i2i", Source: r.Index.Name()})
		out = append(out, it)
	}
	return out, nil
}

var _ Source = (*I2IRecall)(nil)
