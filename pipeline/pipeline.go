package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/itemsim/core"
)

// Pipeline 把查询逻辑拆成可组合的 Node 链：Recall → Filter → Rank → ReRank。
type Pipeline struct {
	Nodes []Node

	// Hook 在每个 Node 执行后调用（可选），用于观测每个阶段的候选数
	Hook func(node Node, in, out int)
}

// Append 返回追加了 nodes 的新 Pipeline，原 Pipeline 不变。
func (p *Pipeline) Append(nodes ...Node) *Pipeline {
	merged := make([]Node, 0, len(p.Nodes)+len(nodes))
	merged = append(merged, p.Nodes...)
	merged = append(merged, nodes...)
	return &Pipeline{Nodes: merged, Hook: p.Hook}
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		if p.Hook != nil {
			p.Hook(node, len(cur), len(next))
		}
		cur = next
	}
	return cur, nil
}
