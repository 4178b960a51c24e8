package recall

import (
	"context"

	"github.com/rushteam/itemsim/core"
)

// Source 表示一个可复用的召回源，从某种索引取出查询物品的候选。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
