package query

import (
	"fmt"
	"math"

	"github.com/rushteam/itemsim/core"
)

// Config 是一次相似物品查询的阈值与输出配置。
type Config struct {
	// ScoreThreshold 相似度下限（不含），取值 [-1, 1]
	ScoreThreshold float64 `yaml:"score_threshold" json:"score_threshold"`

	// SampleThreshold 共现样本数下限（不含），>= 0
	SampleThreshold int64 `yaml:"sample_threshold" json:"sample_threshold"`

	// TopK 返回的最大条数，> 0
	TopK int `yaml:"top_k" json:"top_k"`

	// Expr 可选的 CEL 过滤表达式，见 pkg/dsl
	Expr string `yaml:"expr,omitempty" json:"expr,omitempty"`

	// Exclude 不允许出现在结果中的物品
	Exclude []int64 `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// DefaultConfig 返回默认配置：score > 0.97，samples > 100，Top 10。
func DefaultConfig() Config {
	return ConfigFrom(core.DefaultQueryDefaults{})
}

// ConfigFrom 从 core.QueryDefaults 生成配置。
func ConfigFrom(d core.QueryDefaults) Config {
	return Config{
		ScoreThreshold:  d.DefaultScoreThreshold(),
		SampleThreshold: d.DefaultSampleThreshold(),
		TopK:            d.DefaultTopK(),
	}
}

// Validate 检查配置的取值范围，越界属于调用方编程错误，返回 INVALID_INPUT。
func (c Config) Validate() error {
	switch {
	case c.TopK <= 0:
		return invalid("top_k must be positive, got %d", c.TopK)
	case math.IsNaN(c.ScoreThreshold) || c.ScoreThreshold < -1 || c.ScoreThreshold > 1:
		return invalid("score_threshold must be within [-1, 1], got %v", c.ScoreThreshold)
	case c.SampleThreshold < 0:
		return invalid("sample_threshold must be non-negative, got %d", c.SampleThreshold)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return core.NewDomainError(core.ModuleQuery, core.ErrorCodeInvalidInput, "query: "+fmt.Sprintf(format, args...))
}
