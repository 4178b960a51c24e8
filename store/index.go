package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/rushteam/itemsim/core"
)

// 索引中物品布隆过滤器的默认误判率。
const defaultFalsePositiveRate = 0.01

// IndexMeta 记录写入索引的批处理信息。
type IndexMeta struct {
	RunID       string    `json:"run_id"`
	Pairs       int       `json:"pairs"`
	ScoredPairs int       `json:"scored_pairs"`
	Items       int       `json:"items"`
	CreatedAt   time.Time `json:"created_at"`
}

// SimilarityIndex 是基于 core.KeyValueStore 的相似度索引，实现 core.SimilarityIndex。
//
// Key 布局：
//   - {prefix}:n:{itemID}  Hash，field 为另一物品 id，value 为 SimilarityResult JSON
//   - {prefix}:items       Hash，出现在任意物品对中的物品
//   - {prefix}:bloom       物品的布隆过滤器，HasItem 先用它排除一定不存在的物品
//   - {prefix}:best        有序集合，member 为物品 id，score 为其最高相似度
//   - {prefix}:meta        IndexMeta JSON
type SimilarityIndex struct {
	store  core.KeyValueStore
	prefix string

	// FalsePositiveRate 写入布隆过滤器时使用的误判率
	FalsePositiveRate float64

	mu    sync.RWMutex
	bloom *bloom.BloomFilter
}

// NewSimilarityIndex 创建索引，keyPrefix 为空时使用 "itemsim"。
func NewSimilarityIndex(s core.KeyValueStore, keyPrefix string) *SimilarityIndex {
	if keyPrefix == "" {
		keyPrefix = "itemsim"
	}
	return &SimilarityIndex{
		store:             s,
		prefix:            keyPrefix,
		FalsePositiveRate: defaultFalsePositiveRate,
	}
}

func (x *SimilarityIndex) Name() string { return "store." + x.store.Name() }

func (x *SimilarityIndex) neighborKey(itemID int64) string {
	return x.prefix + ":n:" + strconv.FormatInt(itemID, 10)
}

func (x *SimilarityIndex) key(suffix string) string { return x.prefix + ":" + suffix }

// Save 写入一次批处理的结果：stats 决定物品集合，results 为可打分结果。
func (x *SimilarityIndex) Save(ctx context.Context, runID string, stats []core.PairStatistic, results []core.SimilarityResult) error {
	items := make(map[int64]struct{})
	for _, st := range stats {
		items[st.Pair.A] = struct{}{}
		items[st.Pair.B] = struct{}{}
	}

	neighbors := make(map[int64]map[string][]byte)
	best := make(map[int64]float64)
	for _, r := range results {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode result %d-%d: %w", r.ItemA, r.ItemB, err)
		}
		for _, side := range [2][2]int64{{r.ItemA, r.ItemB}, {r.ItemB, r.ItemA}} {
			if neighbors[side[0]] == nil {
				neighbors[side[0]] = make(map[string][]byte)
			}
			neighbors[side[0]][strconv.FormatInt(side[1], 10)] = data
			if cur, ok := best[side[0]]; !ok || r.Score > cur {
				best[side[0]] = r.Score
			}
		}
	}

	for itemID, fields := range neighbors {
		if err := x.store.HMSet(ctx, x.neighborKey(itemID), fields); err != nil {
			return fmt.Errorf("write neighbors of %d: %w", itemID, err)
		}
		if err := x.store.ZAdd(ctx, x.key("best"), best[itemID], strconv.FormatInt(itemID, 10)); err != nil {
			return fmt.Errorf("write best score of %d: %w", itemID, err)
		}
	}

	itemFields := make(map[string][]byte, len(items))
	capacity := uint(len(items))
	if capacity == 0 {
		capacity = 1
	}
	bf := bloom.NewWithEstimates(capacity, x.FalsePositiveRate)
	for itemID := range items {
		id := strconv.FormatInt(itemID, 10)
		itemFields[id] = []byte("1")
		bf.AddString(id)
	}
	if err := x.store.HMSet(ctx, x.key("items"), itemFields); err != nil {
		return fmt.Errorf("write items: %w", err)
	}

	var buf bytes.Buffer
	if _, err := bf.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode bloom filter: %w", err)
	}
	if err := x.store.Set(ctx, x.key("bloom"), buf.Bytes()); err != nil {
		return fmt.Errorf("write bloom filter: %w", err)
	}

	meta, err := json.Marshal(IndexMeta{
		RunID:       runID,
		Pairs:       len(stats),
		ScoredPairs: len(results),
		Items:       len(items),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := x.store.Set(ctx, x.key("meta"), meta); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}

	x.mu.Lock()
	x.bloom = bf
	x.mu.Unlock()
	return nil
}

// Neighbors 实现 core.SimilarityIndex。
func (x *SimilarityIndex) Neighbors(ctx context.Context, itemID int64) ([]core.SimilarityResult, error) {
	fields, err := x.store.HGetAll(ctx, x.neighborKey(itemID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]core.SimilarityResult, 0, len(fields))
	for field, data := range fields {
		var r core.SimilarityResult
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode neighbor %s of %d: %w", field, itemID, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// HasItem 实现 core.SimilarityIndex。
// 布隆过滤器判定 "一定不存在" 时直接返回；"可能存在" 时再查 items Hash 确认。
func (x *SimilarityIndex) HasItem(ctx context.Context, itemID int64) (bool, error) {
	id := strconv.FormatInt(itemID, 10)
	bf, err := x.loadBloom(ctx)
	if err != nil {
		return false, err
	}
	if bf != nil && !bf.TestString(id) {
		return false, nil
	}
	_, err = x.store.HGet(ctx, x.key("items"), id)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// BestItems 返回最高相似度排名前 n 的物品 id（用于巡检）。
func (x *SimilarityIndex) BestItems(ctx context.Context, n int64) ([]int64, error) {
	members, err := x.store.ZRange(ctx, x.key("best"), 0, n-1)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode member %q: %w", m, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Meta 读取索引的批处理信息，索引不存在时返回 NOT_FOUND。
func (x *SimilarityIndex) Meta(ctx context.Context) (IndexMeta, error) {
	var meta IndexMeta
	data, err := x.store.Get(ctx, x.key("meta"))
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(data, &meta)
	return meta, err
}

// loadBloom 读取并缓存布隆过滤器；不存在时返回 nil（退化为精确查询）。
func (x *SimilarityIndex) loadBloom(ctx context.Context) (*bloom.BloomFilter, error) {
	x.mu.RLock()
	bf := x.bloom
	x.mu.RUnlock()
	if bf != nil {
		return bf, nil
	}

	data, err := x.store.Get(ctx, x.key("bloom"))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read bloom filter: %w", err)
	}
	bf = &bloom.BloomFilter{}
	if _, err := bf.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("decode bloom filter: %w", err)
	}

	x.mu.Lock()
	x.bloom = bf
	x.mu.Unlock()
	return bf, nil
}

var _ core.SimilarityIndex = (*SimilarityIndex)(nil)
