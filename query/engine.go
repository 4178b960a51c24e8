// Package query 是相似物品查询引擎：对一个物品，从相似度索引中取出候选，
// 按阈值过滤、按相似度排序并返回 TopK。
package query

import (
	"context"
	"log/slog"

	"github.com/rushteam/itemsim/core"
	"github.com/rushteam/itemsim/filter"
	"github.com/rushteam/itemsim/pipeline"
	"github.com/rushteam/itemsim/rank"
	"github.com/rushteam/itemsim/recall"
	"github.com/rushteam/itemsim/rerank"
)

// Status 区分空结果的原因。
type Status string

const (
	// StatusOK 至少有一条结果
	StatusOK Status = "ok"

	// StatusUnknownItem 查询物品没有出现在任何物品对中（通常是调用方传错了 id）
	StatusUnknownItem Status = "unknown_item"

	// StatusNoneQualified 物品有共现物品，但没有一条满足阈值
	StatusNoneQualified Status = "none_qualified"
)

// Result 是一次查询的输出。
type Result struct {
	ItemID          int64
	Status          Status
	Candidates      int // 召回的候选数（过滤前）
	Recommendations []core.Recommendation
}

// Option 用于定制 Engine。
type Option func(*Engine)

// WithLogger 设置日志。
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithNodes 在内置过滤与排序之后追加自定义 Node（例如来自 YAML 的 Pipeline）。
// 自定义 Node 看到的是已排序的候选，其输出会再排序一次后截断为 TopK。
func WithNodes(nodes ...pipeline.Node) Option {
	return func(e *Engine) { e.extra = append(e.extra, nodes...) }
}

// WithExcludeStore 从存储的 key 中读取额外的排除列表（JSON 数组）。
func WithExcludeStore(s core.Store, key string) Option {
	return func(e *Engine) {
		e.excludeStore = s
		e.excludeKey = key
	}
}

// WithParams 设置请求级参数，表达式中可以通过 rctx.params.<key> 读取。
func WithParams(params map[string]any) Option {
	return func(e *Engine) { e.params = params }
}

// Engine 是查询引擎。构建后只读，可以被并发调用。
type Engine struct {
	index        core.SimilarityIndex
	config       Config
	logger       *slog.Logger
	extra        []pipeline.Node
	excludeStore core.Store
	excludeKey   string
	params       map[string]any
	pipeline     *pipeline.Pipeline
}

// NewEngine 校验配置并构建查询 Pipeline：
// recall.i2i → filter（阈值 / 表达式 / 排除）→ rank.score → [自定义 Node → rank.score] → rerank.topn。
func NewEngine(index core.SimilarityIndex, cfg Config, opts ...Option) (*Engine, error) {
	if index == nil {
		return nil, core.NewDomainError(core.ModuleQuery, core.ErrorCodeInvalidInput, "query: nil similarity index")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{index: index, config: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	filters := []filter.Filter{filter.NewThresholdFilter(cfg.ScoreThreshold, cfg.SampleThreshold)}
	if cfg.Expr != "" {
		ef, err := filter.NewExprFilter(cfg.Expr)
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleQuery, core.ErrorCodeInvalidInput, err, "query: expr %q", cfg.Expr)
		}
		filters = append(filters, ef)
	}
	if len(cfg.Exclude) > 0 || e.excludeStore != nil {
		filters = append(filters, filter.NewBlacklistFilter(cfg.Exclude, e.excludeStore, e.excludeKey))
	}

	nodes := []pipeline.Node{
		&recall.I2IRecall{Index: index},
		&filter.FilterNode{Filters: filters, Strict: true},
		&rank.ScoreSortNode{},
	}
	if len(e.extra) > 0 {
		nodes = append(nodes, e.extra...)
		nodes = append(nodes, &rank.ScoreSortNode{})
	}
	nodes = append(nodes, &rerank.TopNNode{N: cfg.TopK})
	e.pipeline = &pipeline.Pipeline{Nodes: nodes}
	return e, nil
}

// Config 返回引擎使用的配置。
func (e *Engine) Config() Config { return e.config }

// Query 返回与 itemID 最相似的至多 TopK 个物品，按相似度降序。
// 空结果不是错误，原因见 Result.Status。
func (e *Engine) Query(ctx context.Context, itemID int64) (*Result, error) {
	if itemID <= 0 {
		return nil, invalid("item id must be positive, got %d", itemID)
	}

	rctx := &core.RecommendContext{ItemID: itemID, Scene: "query", Params: e.params}
	rctx.PutLabel("index", core.Label{Value: e.index.Name(), Source: "query"})
	candidates := 0
	p := &pipeline.Pipeline{
		Nodes: e.pipeline.Nodes,
		Hook: func(node pipeline.Node, in, out int) {
			if node.Kind() == pipeline.KindRecall {
				candidates = out
			}
			e.logger.Debug("query node", "item", itemID, "node", node.Name(), "in", in, "out", out)
		},
	}

	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		code := core.ErrorCodeInternalError
		if ctx.Err() != nil {
			code = core.ErrorCodeCanceled
		}
		return nil, core.WrapDomainError(core.ModuleQuery, code, err, "query: item %d", itemID)
	}

	res := &Result{
		ItemID:          itemID,
		Status:          StatusOK,
		Candidates:      candidates,
		Recommendations: make([]core.Recommendation, 0, len(items)),
	}
	for _, it := range items {
		res.Recommendations = append(res.Recommendations, it.Recommendation())
	}

	if len(res.Recommendations) == 0 {
		res.Status = StatusNoneQualified
		if candidates == 0 {
			known, err := e.index.HasItem(ctx, itemID)
			if err != nil {
				return nil, core.WrapDomainError(core.ModuleQuery, core.ErrorCodeUnavailable, err, "query: lookup item %d", itemID)
			}
			if !known {
				res.Status = StatusUnknownItem
			}
		}
	}

	e.logger.Info("similar items query",
		"item", itemID, "index", e.index.Name(), "status", string(res.Status),
		"candidates", candidates, "returned", len(res.Recommendations))
	return res, nil
}
