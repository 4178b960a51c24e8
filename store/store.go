// Package store 提供 core.Store / core.KeyValueStore 的实现（内存、Redis），
// 以及基于它们的物品相似度索引 SimilarityIndex。
//
// 示例：
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	idx := store.NewSimilarityIndex(kv, "itemsim")
package store
