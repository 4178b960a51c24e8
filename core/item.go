package core

import "strings"

// Label 是推荐链路中的可解释标记：记录物品从哪个节点来、因何被过滤。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rank / rerank ...
}

// MergeLabel 合并同名 Label：Value 以 '|' 累积，Source 去重后以 ',' 累积。
func MergeLabel(existing, incoming Label) Label {
	switch {
	case existing.Value == "":
		return incoming
	case incoming.Value == "":
		return existing
	}
	merged := Label{Value: existing.Value + "|" + incoming.Value, Source: existing.Source}
	if incoming.Source != "" && !containsToken(existing.Source, incoming.Source) {
		if merged.Source == "" {
			merged.Source = incoming.Source
		} else {
			merged.Source += "," + incoming.Source
		}
	}
	return merged
}

func containsToken(list, token string) bool {
	for _, s := range strings.Split(list, ",") {
		if s == token {
			return true
		}
	}
	return false
}

// Item 是查询链路中的统一承载结构。
// ID 是与查询物品配对的 "另一个" 物品；Score / SampleCount 来自相似度结果。
type Item struct {
	ID          int64
	Score       float64
	SampleCount int64
	Labels      map[string]Label
}

func NewItem(id int64) *Item {
	return &Item{
		ID:     id,
		Labels: make(map[string]Label),
	}
}

// PutLabel 写入 Label；同名 key 按 MergeLabel 累积。
func (it *Item) PutLabel(key string, lbl Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Recommendation 转换为对外输出结构。
func (it *Item) Recommendation() Recommendation {
	return Recommendation{ItemID: it.ID, Score: it.Score, SampleCount: it.SampleCount}
}
