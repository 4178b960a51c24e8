package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/itemsim/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Expr 是编译后的候选过滤表达式，使用 CEL (Common Expression Language) 语法。
// 编译一次，可被多个 goroutine 并发求值。
//
// 可用变量：
//   - item.id / item.score / item.samples
//   - label.<key>：候选物品 Label 的 Value，例如 label.recall_source == "i2i"
//   - rctx.item_id / rctx.scene / rctx.params.<key>
//
// 示例：
//   - `item.score > 0.98 && item.samples > 500`
//   - `item.id != 2571`
//   - `rctx.params.min_samples != null && item.samples > rctx.params.min_samples`
type Expr struct {
	source string
	prg    cel.Program
}

// Compile 编译表达式，表达式必须返回 bool。
func Compile(expr string) (*Expr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return bool, got %s", t)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Expr{source: expr, prg: prg}, nil
}

// String 返回表达式原文。
func (e *Expr) String() string { return e.source }

// Match 对单个候选求值。
func (e *Expr) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := e.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}

	ctxMap := map[string]any{
		"item_id": int64(0),
		"scene":   "",
		"params":  map[string]any{},
	}
	if rctx != nil {
		ctxMap["item_id"] = rctx.ItemID
		ctxMap["scene"] = rctx.Scene
		if rctx.Params != nil {
			ctxMap["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item": map[string]any{
			"id":      item.ID,
			"score":   item.Score,
			"samples": item.SampleCount,
		},
		"label": labels,
		"rctx":  ctxMap,
	}
}
