package pipeline

import (
	"context"

	"github.com/rushteam/itemsim/core"
)

// Kind 用于标记 Node 类型，方便观测/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall Kind = "recall" // 召回阶段：从相似度索引取候选
	KindFilter Kind = "filter" // 过滤阶段：阈值 / 表达式 / 排除
	KindRank   Kind = "rank"   // 排序阶段：按相似度排序
	KindReRank Kind = "rerank" // 重排阶段：截断 TopK 等
)

// Node 是 Pipeline 的最小可扩展单元，统一采用 "输入 items -> 输出 items" 的形态。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
