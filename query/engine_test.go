package query

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/itemsim/core"
	"github.com/rushteam/itemsim/pipeline"
	"github.com/rushteam/itemsim/rerank"
	"github.com/rushteam/itemsim/store"
)

// staticIndex 是基于固定结果列表的 core.SimilarityIndex。
type staticIndex struct {
	results []core.SimilarityResult
	known   map[int64]bool
	err     error
}

func newStaticIndex(results ...core.SimilarityResult) *staticIndex {
	idx := &staticIndex{results: results, known: make(map[int64]bool)}
	for _, r := range results {
		idx.known[r.ItemA] = true
		idx.known[r.ItemB] = true
	}
	return idx
}

func (s *staticIndex) Name() string { return "static" }

func (s *staticIndex) Neighbors(_ context.Context, itemID int64) ([]core.SimilarityResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []core.SimilarityResult
	for _, r := range s.results {
		if r.Pair().Contains(itemID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *staticIndex) HasItem(_ context.Context, itemID int64) (bool, error) {
	return s.known[itemID], nil
}

func sim(a, b int64, score float64, samples int64) core.SimilarityResult {
	p := core.NewItemPair(a, b)
	return core.SimilarityResult{ItemA: p.A, ItemB: p.B, Score: score, SampleCount: samples}
}

func ids(recs []core.Recommendation) []int64 {
	out := make([]int64, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ItemID)
	}
	return out
}

func testIndex() *staticIndex {
	return newStaticIndex(
		sim(50, 10, 0.99, 300),
		sim(50, 20, 0.985, 150),
		sim(30, 50, 0.995, 120),
		sim(50, 40, 0.999, 90),  // 样本不足
		sim(50, 60, 0.96, 1000), // 相似度不足
		sim(50, 70, 0.97, 500),  // 等于阈值，不含边界
		sim(50, 80, 0.98, 101),
		sim(10, 20, 0.999, 999), // 不含查询物品
	)
}

func TestEngine_QueryDefaults(t *testing.T) {
	eng, err := NewEngine(testIndex(), DefaultConfig())
	require.NoError(t, err)

	res, err := eng.Query(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, 7, res.Candidates)
	assert.Equal(t, []int64{30, 10, 20, 80}, ids(res.Recommendations))
	assert.Equal(t, core.Recommendation{ItemID: 30, Score: 0.995, SampleCount: 120}, res.Recommendations[0])

	for i := 1; i < len(res.Recommendations); i++ {
		assert.GreaterOrEqual(t, res.Recommendations[i-1].Score, res.Recommendations[i].Score)
	}
}

func TestEngine_QueryTopK(t *testing.T) {
	cfg := Config{ScoreThreshold: -1, SampleThreshold: 0, TopK: 3}
	eng, err := NewEngine(testIndex(), cfg)
	require.NoError(t, err)

	res, err := eng.Query(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, []int64{40, 30, 10}, ids(res.Recommendations))
}

func TestEngine_ThresholdMonotonic(t *testing.T) {
	ctx := context.Background()
	idx := testIndex()
	prev := math.MaxInt
	for _, threshold := range []float64{-1, 0, 0.96, 0.97, 0.98, 0.99, 0.999, 1} {
		eng, err := NewEngine(idx, Config{ScoreThreshold: threshold, SampleThreshold: 0, TopK: 100})
		require.NoError(t, err)
		res, err := eng.Query(ctx, 50)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Recommendations), prev, "threshold %v", threshold)
		prev = len(res.Recommendations)
	}
	assert.Zero(t, prev)
}

func TestEngine_SampleThresholdMonotonic(t *testing.T) {
	ctx := context.Background()
	idx := testIndex()
	var prev []int64
	for i, threshold := range []int64{0, 90, 100, 120, 150, 300, 500, 999, 1000} {
		eng, err := NewEngine(idx, Config{ScoreThreshold: -1, SampleThreshold: threshold, TopK: 100})
		require.NoError(t, err)
		res, err := eng.Query(ctx, 50)
		require.NoError(t, err)
		got := ids(res.Recommendations)
		if i > 0 {
			assert.Subset(t, prev, got, "threshold %d", threshold)
		}
		for _, r := range res.Recommendations {
			assert.Greater(t, r.SampleCount, threshold)
		}
		prev = got
	}
	assert.Empty(t, prev)
}

func TestEngine_TieBreak(t *testing.T) {
	idx := newStaticIndex(
		sim(1, 9, 0.99, 200),
		sim(1, 4, 0.99, 200),
		sim(1, 7, 0.99, 300),
		sim(1, 2, 0.99, 200),
	)
	eng, err := NewEngine(idx, DefaultConfig())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		res, err := eng.Query(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{7, 2, 4, 9}, ids(res.Recommendations))
	}
}

func TestEngine_EmptyResultStatus(t *testing.T) {
	eng, err := NewEngine(testIndex(), DefaultConfig())
	require.NoError(t, err)

	res, err := eng.Query(context.Background(), 999)
	require.NoError(t, err)
	assert.Equal(t, StatusUnknownItem, res.Status)
	assert.Empty(t, res.Recommendations)

	strict, err := NewEngine(testIndex(), Config{ScoreThreshold: 1, SampleThreshold: 0, TopK: 10})
	require.NoError(t, err)
	res, err = strict.Query(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, StatusNoneQualified, res.Status)
	assert.Equal(t, 7, res.Candidates)
	assert.Empty(t, res.Recommendations)
}

func TestEngine_KnownItemWithoutScorablePairs(t *testing.T) {
	// 物品出现在物品对中，但所有物品对都不可打分
	idx := newStaticIndex()
	idx.known[5] = true
	eng, err := NewEngine(idx, DefaultConfig())
	require.NoError(t, err)

	res, err := eng.Query(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, StatusNoneQualified, res.Status)
}

func TestEngine_ExprAndExclude(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Expr = "item.samples > 140"
	cfg.Exclude = []int64{10}
	eng, err := NewEngine(testIndex(), cfg)
	require.NoError(t, err)

	res, err := eng.Query(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, []int64{20}, ids(res.Recommendations))
}

func TestEngine_ExcludeStore(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()
	require.NoError(t, ms.Set(ctx, "itemsim:exclude", []byte("[30, 80]")))

	eng, err := NewEngine(testIndex(), DefaultConfig(), WithExcludeStore(ms, "itemsim:exclude"))
	require.NoError(t, err)
	res, err := eng.Query(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20}, ids(res.Recommendations))
}

// reverseNode 把候选倒序输出。
type reverseNode struct{}

func (reverseNode) Name() string        { return "test.reverse" }
func (reverseNode) Kind() pipeline.Kind { return pipeline.KindReRank }
func (reverseNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	out := make([]*core.Item, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i])
	}
	return out, nil
}

func TestEngine_WithNodes(t *testing.T) {
	cfg := Config{ScoreThreshold: -1, SampleThreshold: 0, TopK: 10}
	tests := []struct {
		name  string
		nodes []pipeline.Node
		want  []int64
	}{
		{name: "topn after sort", nodes: []pipeline.Node{&rerank.TopNNode{N: 2}}, want: []int64{40, 30}},
		{name: "resorted", nodes: []pipeline.Node{reverseNode{}}, want: []int64{40, 30, 10, 20, 80, 70, 60}},
		{name: "reverse then topn", nodes: []pipeline.Node{reverseNode{}, &rerank.TopNNode{N: 2}}, want: []int64{70, 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := NewEngine(testIndex(), cfg, WithNodes(tt.nodes...))
			require.NoError(t, err)

			res, err := eng.Query(context.Background(), 50)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res.Recommendations))
		})
	}
}

func TestEngine_InvalidInput(t *testing.T) {
	_, err := NewEngine(nil, DefaultConfig())
	assert.True(t, core.IsInvalidInput(err))

	_, err = NewEngine(testIndex(), Config{ScoreThreshold: 0.5, TopK: 10, Expr: "item.samples >"})
	assert.True(t, core.IsInvalidInput(err))

	eng, err := NewEngine(testIndex(), DefaultConfig())
	require.NoError(t, err)
	for _, id := range []int64{0, -3} {
		_, err := eng.Query(context.Background(), id)
		assert.True(t, core.IsInvalidInput(err), "item %d", id)
	}
}

func TestEngine_IndexError(t *testing.T) {
	idx := testIndex()
	idx.err = errors.New("redis: connection refused")
	eng, err := NewEngine(idx, DefaultConfig())
	require.NoError(t, err)

	_, err = eng.Query(context.Background(), 50)
	require.Error(t, err)
	assert.ErrorIs(t, err, idx.err)
	assert.True(t, core.IsDomainError(err))
}

func TestEngine_Canceled(t *testing.T) {
	eng, err := NewEngine(testIndex(), DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = eng.Query(ctx, 50)
	assert.True(t, core.IsCanceled(err))
}

func TestEngine_ExprParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Expr = "item.samples > rctx.params.min_samples"
	eng, err := NewEngine(testIndex(), cfg, WithParams(map[string]any{"min_samples": int64(200)}))
	require.NoError(t, err)

	res, err := eng.Query(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, ids(res.Recommendations))
}
