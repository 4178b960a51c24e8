package core

// 评分取值范围（MovieLens 为 1-5 星）。
const (
	MinRating = 1
	MaxRating = 5
)

// Rating 是一条用户评分记录，由外部 Loader 产出，在一次批处理中只读。
type Rating struct {
	UserID    int64
	ItemID    int64
	Rating    int
	Timestamp int64
}

// ItemPair 是无序物品对，构造时保证 A < B，避免 (A,B) 与 (B,A) 重复计数。
type ItemPair struct {
	A int64
	B int64
}

// NewItemPair 按 id 大小规范化物品对。
// 调用方需保证 a != b；自身配对不是合法的 ItemPair。
func NewItemPair(a, b int64) ItemPair {
	if a > b {
		a, b = b, a
	}
	return ItemPair{A: a, B: b}
}

// Contains 判断 itemID 是否为物品对中的一方。
func (p ItemPair) Contains(itemID int64) bool {
	return p.A == itemID || p.B == itemID
}

// Other 返回物品对中不等于 itemID 的另一方。
func (p ItemPair) Other(itemID int64) int64 {
	if p.A == itemID {
		return p.B
	}
	return p.A
}

// PairRating 是同一用户对一组物品对的评分，Pair Generator 的输出单元。
type PairRating struct {
	Pair    ItemPair
	RatingA int
	RatingB int
}
