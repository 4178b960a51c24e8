package builders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/itemsim/config"
	"github.com/rushteam/itemsim/core"
	"github.com/rushteam/itemsim/pipeline"
)

func TestRegisteredTypes(t *testing.T) {
	assert.Subset(t, config.SupportedTypes(), []string{"filter", "rank.score", "rerank.topn"})
}

func TestBuildFromYAML(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(`
pipeline:
  name: strict
  nodes:
    - type: filter
      config:
        filters:
          - {type: threshold, score_threshold: 0.9, sample_threshold: 50}
          - {type: expr, expr: "item.samples > 200"}
          - {type: blacklist, item_ids: [3]}
    - type: rank.score
    - type: rerank.topn
      config:
        n: 1
`))
	require.NoError(t, err)
	p, err := cfg.BuildPipeline(config.DefaultFactory())
	require.NoError(t, err)
	require.Len(t, p.Nodes, 3)

	mk := func(id int64, score float64, samples int64) *core.Item {
		it := core.NewItem(id)
		it.Score, it.SampleCount = score, samples
		return it
	}
	out, err := p.Run(context.Background(), nil, []*core.Item{
		mk(1, 0.95, 300),
		mk(2, 0.99, 100),
		mk(3, 0.99, 900),
		mk(4, 0.96, 250),
		mk(5, 0.5, 900),
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(4), out[0].ID)
}

func TestBuildErrors(t *testing.T) {
	_, err := BuildFilterNode(map[string]any{})
	assert.Error(t, err)

	_, err = BuildFilterNode(map[string]any{"filters": []any{map[string]any{"type": "geo"}}})
	assert.ErrorContains(t, err, "unknown filter type")

	_, err = BuildFilterNode(map[string]any{"filters": []any{map[string]any{"type": "expr"}}})
	assert.Error(t, err)

	_, err = BuildTopNNode(map[string]any{"n": 0})
	assert.Error(t, err)

	n, err := BuildTopNNode(map[string]any{"n": 5.0})
	require.NoError(t, err)
	assert.Equal(t, "rerank.topn", n.Name())
}
