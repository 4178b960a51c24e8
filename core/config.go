package core

// 查询与批处理的默认配置。
const (
	// DefaultScoreThreshold 相似度下限（不含）
	DefaultScoreThreshold = 0.97

	// DefaultSampleThreshold 共现样本数下限（不含）
	DefaultSampleThreshold = 100

	// DefaultTopK 默认返回的相似物品数
	DefaultTopK = 10

	// DefaultPartitions 默认 map 分区数（按 userID 划分）
	DefaultPartitions = 8

	// DefaultReducers 默认 reduce 分桶数（按物品对划分）
	DefaultReducers = 8
)

// QueryDefaults 是查询相关的配置接口，用于提供默认值。
// 与 DefaultQueryDefaults 不同的默认值可以通过实现此接口注入 query.Engine。
type QueryDefaults interface {
	DefaultScoreThreshold() float64
	DefaultSampleThreshold() int64
	DefaultTopK() int
}

// DefaultQueryDefaults 是默认的查询配置实现。
type DefaultQueryDefaults struct{}

func (DefaultQueryDefaults) DefaultScoreThreshold() float64 { return DefaultScoreThreshold }

func (DefaultQueryDefaults) DefaultSampleThreshold() int64 { return DefaultSampleThreshold }

func (DefaultQueryDefaults) DefaultTopK() int { return DefaultTopK }
