package filter

import (
	"context"

	"github.com/rushteam/itemsim/core"
)

// ThresholdFilter 过滤掉未达到显著性阈值的候选。
// 两个阈值都是不含边界的：保留 score > ScoreThreshold 且 samples > SampleThreshold。
type ThresholdFilter struct {
	ScoreThreshold  float64
	SampleThreshold int64
}

func NewThresholdFilter(scoreThreshold float64, sampleThreshold int64) *ThresholdFilter {
	return &ThresholdFilter{ScoreThreshold: scoreThreshold, SampleThreshold: sampleThreshold}
}

func (f *ThresholdFilter) Name() string {
	return "filter.threshold"
}

func (f *ThresholdFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return !(item.Score > f.ScoreThreshold && item.SampleCount > f.SampleThreshold), nil
}
