package builders

import (
	"fmt"
	"strings"

	"github.com/rushteam/itemsim/config"
	"github.com/rushteam/itemsim/filter"
	"github.com/rushteam/itemsim/pipeline"
	"github.com/rushteam/itemsim/pkg/conv"
	"github.com/rushteam/itemsim/rank"
	"github.com/rushteam/itemsim/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("rank.score", BuildScoreSortNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// BuildFilterNode 构建组合过滤节点：
//
//	type: filter
//	config:
//	  filters:
//	    - {type: threshold, score_threshold: 0.9, sample_threshold: 50}
//	    - {type: expr, expr: "item.samples > 200"}
//	    - {type: blacklist, item_ids: [1, 2]}
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "threshold":
			filters = append(filters, filter.NewThresholdFilter(
				conv.ConfigGetFloat64(filterMap, "score_threshold", 0),
				conv.ConfigGetInt64(filterMap, "sample_threshold", 0),
			))
		case "expr":
			expr := strings.TrimSpace(conv.ConfigGet(filterMap, "expr", ""))
			if expr == "" {
				return nil, fmt.Errorf("expr filter: expr is required")
			}
			ef, err := filter.NewExprFilter(expr)
			if err != nil {
				return nil, fmt.Errorf("expr filter: %w", err)
			}
			filters = append(filters, ef)
		case "blacklist":
			filters = append(filters, filter.NewBlacklistFilter(conv.SliceAnyToInt64(filterMap["item_ids"]), nil, ""))
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters, Strict: conv.ConfigGet(cfg, "strict", true)}, nil
}

func BuildScoreSortNode(map[string]any) (pipeline.Node, error) {
	return &rank.ScoreSortNode{}, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	if n <= 0 {
		return nil, fmt.Errorf("rerank.topn: n must be positive")
	}
	return &rerank.TopNNode{N: int(n)}, nil
}
