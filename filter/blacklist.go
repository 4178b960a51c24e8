package filter

import (
	"context"
	"encoding/json"

	"github.com/rushteam/itemsim/core"
)

// BlacklistFilter 过滤掉指定的物品，例如下架或不希望出现在相似列表里的物品。
type BlacklistFilter struct {
	// ItemIDs 是内存中的黑名单
	ItemIDs []int64

	// Store 和 Key 可选：从存储中读取 JSON 数组形式的黑名单（[1,2,3]）
	Store core.Store
	Key   string

	set map[int64]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(itemIDs []int64, store core.Store, key string) *BlacklistFilter {
	set := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		set[id] = struct{}{}
	}
	return &BlacklistFilter{
		ItemIDs: itemIDs,
		Store:   store,
		Key:     key,
		set:     set,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}

	if f.set != nil {
		if _, ok := f.set[item.ID]; ok {
			return true, nil
		}
	} else {
		for _, id := range f.ItemIDs {
			if item.ID == id {
				return true, nil
			}
		}
	}

	if f.Store == nil || f.Key == "" {
		return false, nil
	}
	data, err := f.Store.Get(ctx, f.Key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return false, nil
		}
		return false, err
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return false, err
	}
	for _, id := range ids {
		if item.ID == id {
			return true, nil
		}
	}
	return false, nil
}
