package core

import "context"

// SimilarityResult 是一个可打分物品对的相似度，只在分母大于 0（或按策略补 0）时产生。
// 不可打分的物品对不会出现，"无证据" 与 "得分为 0" 不会混淆。
type SimilarityResult struct {
	ItemA       int64   `json:"item_a"`
	ItemB       int64   `json:"item_b"`
	Score       float64 `json:"score"`
	SampleCount int64   `json:"samples"`
}

// Pair 返回结果对应的规范化物品对。
func (r SimilarityResult) Pair() ItemPair {
	return ItemPair{A: r.ItemA, B: r.ItemB}
}

// Other 返回 itemID 在该结果中的配对物品。
func (r SimilarityResult) Other(itemID int64) int64 {
	return r.Pair().Other(itemID)
}

// Recommendation 是对外可见的单条推荐：相似物品、得分与样本数。
type Recommendation struct {
	ItemID      int64   `json:"item_id"`
	Score       float64 `json:"score"`
	SampleCount int64   `json:"samples"`
}

// SimilarityIndex 是相似度结果的领域读接口。
//
// 实现：
//   - engine.Result（一次批处理的内存结果）
//   - store.SimilarityIndex（基于 core.KeyValueStore，Redis / 内存）
type SimilarityIndex interface {
	// Name 返回索引名称（用于日志/监控）
	Name() string

	// Neighbors 返回包含 itemID 的所有可打分结果，顺序不保证
	Neighbors(ctx context.Context, itemID int64) ([]SimilarityResult, error)

	// HasItem 判断 itemID 是否出现在任意物品对中（无论是否可打分）
	HasItem(ctx context.Context, itemID int64) (bool, error)
}
