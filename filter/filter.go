package filter

import (
	"context"

	"github.com/rushteam/itemsim/core"
)

// Filter 判断一个候选物品是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	Name() string

	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}
