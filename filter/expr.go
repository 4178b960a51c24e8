package filter

import (
	"context"

	"github.com/rushteam/itemsim/core"
	"github.com/rushteam/itemsim/pkg/dsl"
)

// ExprFilter 使用 CEL 表达式筛选候选：表达式为 true 的物品保留，false 的过滤掉。
type ExprFilter struct {
	expr *dsl.Expr
}

// NewExprFilter 编译表达式，语法错误在此返回。
func NewExprFilter(expr string) (*ExprFilter, error) {
	compiled, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{expr: compiled}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

// Expr 返回表达式原文。
func (f *ExprFilter) Expr() string {
	return f.expr.String()
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	keep, err := f.expr.Match(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
