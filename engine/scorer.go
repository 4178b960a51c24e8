package engine

import (
	"fmt"
	"math"

	"github.com/rushteam/itemsim/core"
)

// ZeroNormPolicy 决定分母为 0 的物品对如何处理。
type ZeroNormPolicy string

const (
	// ZeroNormDrop 视为 "无证据"，不产出结果（默认）
	ZeroNormDrop ZeroNormPolicy = "drop"

	// ZeroNormZero 产出 score = 0 的结果
	ZeroNormZero ZeroNormPolicy = "zero"
)

// ParseZeroNormPolicy 解析配置中的策略名，空串返回默认值。
func ParseZeroNormPolicy(s string) (ZeroNormPolicy, error) {
	switch ZeroNormPolicy(s) {
	case "", ZeroNormDrop:
		return ZeroNormDrop, nil
	case ZeroNormZero:
		return ZeroNormZero, nil
	default:
		return "", core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("engine: unknown zero-norm policy %q", s))
	}
}

// Score 计算余弦相似度：Σab / (sqrt(Σa²)·sqrt(Σb²))。
// 分母为 0 时按 policy 处理；ok 为 false 表示该物品对不可打分。
func Score(st core.PairStatistic, policy ZeroNormPolicy) (core.SimilarityResult, bool) {
	res := core.SimilarityResult{
		ItemA:       st.Pair.A,
		ItemB:       st.Pair.B,
		SampleCount: st.SampleCount,
	}
	den := math.Sqrt(st.NormA()) * math.Sqrt(st.NormB())
	if den == 0 {
		if policy == ZeroNormZero {
			return res, true
		}
		return res, false
	}
	score := st.Numerator() / den
	// 浮点误差可能让结果略微越过 1
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	res.Score = score
	return res, true
}
