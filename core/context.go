package core

// RecommendContext 承载一次相似物品查询的上下文，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	// ItemID 是被查询的物品
	ItemID int64

	// Scene 用于日志/观测区分调用方，例如 "cli"、"batch"
	Scene string

	// Labels 是查询级标签
	Labels map[string]Label

	// Params 请求级参数，可被表达式过滤器读取（rctx.params.xxx）
	Params map[string]any
}

// PutLabel 写入查询级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取查询级 Label。
func (rctx *RecommendContext) GetLabel(key string) (Label, bool) {
	if rctx.Labels == nil {
		return Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
