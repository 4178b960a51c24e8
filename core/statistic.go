package core

// PairStatistic 是计算余弦相似度所需的充分统计量。
//
// 评分是整数，因此累加值以 int64 精确保存：任意分区方式合并后的结果逐位一致，
// 与合并顺序无关。
type PairStatistic struct {
	Pair        ItemPair
	SumProduct  int64 // Σ ratingA·ratingB
	SumSquareA  int64 // Σ ratingA²
	SumSquareB  int64 // Σ ratingB²
	SampleCount int64
}

// Add 折叠一条共现评分。
func (s *PairStatistic) Add(ratingA, ratingB int) {
	a, b := int64(ratingA), int64(ratingB)
	s.SumProduct += a * b
	s.SumSquareA += a * a
	s.SumSquareB += b * b
	s.SampleCount++
}

// Merge 合并同一物品对的另一份部分统计量（满足交换律与结合律）。
// 同一份部分结果只能合并一次，否则会重复计数。
func (s *PairStatistic) Merge(other PairStatistic) {
	s.SumProduct += other.SumProduct
	s.SumSquareA += other.SumSquareA
	s.SumSquareB += other.SumSquareB
	s.SampleCount += other.SampleCount
}

func (s PairStatistic) Numerator() float64 { return float64(s.SumProduct) }

func (s PairStatistic) NormA() float64 { return float64(s.SumSquareA) }

func (s PairStatistic) NormB() float64 { return float64(s.SumSquareB) }
