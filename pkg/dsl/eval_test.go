package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/itemsim/core"
)

func TestExpr_Match(t *testing.T) {
	item := core.NewItem(2571)
	item.Score = 0.985
	item.SampleCount = 640
	item.PutLabel("recall_source", core.Label{Value: "i2i", Source: "engine.result"})
	rctx := &core.RecommendContext{ItemID: 50, Scene: "query", Params: map[string]any{"min_samples": int64(500)}}

	tests := []struct {
		expr string
		want bool
	}{
		{"item.score > 0.98 && item.samples > 500", true},
		{"item.id != 2571", false},
		{`label.recall_source == "i2i"`, true},
		{"rctx.item_id == 50", true},
		{`rctx.scene == "query"`, true},
		{"item.samples > rctx.params.min_samples", true},
		{"item.score > 0.99", false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := Compile(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, e.String())

			got, err := e.Match(item, rctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpr_NilContext(t *testing.T) {
	e, err := Compile(`rctx.scene == ""`)
	require.NoError(t, err)
	got, err := e.Match(core.NewItem(1), nil)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCompile_Errors(t *testing.T) {
	for _, expr := range []string{"item.score >", `"text"`, "1 + 2"} {
		_, err := Compile(expr)
		assert.Error(t, err, expr)
	}
}

func TestExpr_NonBoolAtRuntime(t *testing.T) {
	// item.id 的静态类型是 dyn，只能在求值时发现不是 bool
	e, err := Compile("item.id")
	require.NoError(t, err)
	_, err = e.Match(core.NewItem(1), nil)
	assert.Error(t, err)
}
