// Package itemsim 计算物品之间的余弦相似度（item-to-item），并回答
// "与物品 X 最相似的 K 个物品" 这类查询。
//
// 设计要点：
// - 批处理: 评分按用户分区 → 每个用户产出物品对 → 按物品对聚合充分统计量 → 打分
// - 统计量用整数累加，任意分区方式下结果逐位一致
// - 查询是一条 Pipeline: recall.i2i → filter → rank.score → rerank.topn
package itemsim

import (
	"context"

	"github.com/rushteam/itemsim/core"
	"github.com/rushteam/itemsim/engine"
	"github.com/rushteam/itemsim/pipeline"
	"github.com/rushteam/itemsim/query"
	"github.com/rushteam/itemsim/ratings"
)

// 轻量 facade：便于直接 import "itemsim" 使用核心抽象。
type (
	Rating           = core.Rating
	SimilarityResult = core.SimilarityResult
	Recommendation   = core.Recommendation
	SimilarityIndex  = core.SimilarityIndex
	Pipeline         = pipeline.Pipeline
	Node             = pipeline.Node
)

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)

// NewRatingStore 创建空的评分存储。
func NewRatingStore() *ratings.Store { return ratings.NewStore() }

// NewQueryEngine 使用默认阈值（0.97 / 100 / Top 10）构建查询引擎。
func NewQueryEngine(index core.SimilarityIndex, opts ...query.Option) (*query.Engine, error) {
	return query.NewEngine(index, query.DefaultConfig(), opts...)
}

// Compute 以默认分区数运行一次批处理。
func Compute(store *ratings.Store) (*engine.Result, error) {
	return (&engine.Engine{}).Run(context.Background(), store)
}
