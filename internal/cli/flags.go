package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	_ "github.com/rushteam/itemsim/config/builders"

	"github.com/rushteam/itemsim/config"
	"github.com/rushteam/itemsim/core"
	"github.com/rushteam/itemsim/pipeline"
	"github.com/rushteam/itemsim/query"
	"github.com/rushteam/itemsim/ratings"
	"github.com/rushteam/itemsim/sink"
)

// queryFlags 是 similar 和 query 共用的查询参数。
type queryFlags struct {
	item            int64
	scoreThreshold  float64
	sampleThreshold int64
	top             int
	expr            string
	exclude         []int64
	pipelineFile    string
	movies          string
	moviesFormat    string
	out             string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Int64VarP(&f.item, "item", "i", 0, "item id to find similar items for")
	fs.Float64Var(&f.scoreThreshold, "score-threshold", core.DefaultScoreThreshold, "minimum similarity score (exclusive)")
	fs.Int64Var(&f.sampleThreshold, "sample-threshold", core.DefaultSampleThreshold, "minimum co-rating count (exclusive)")
	fs.IntVarP(&f.top, "top", "n", core.DefaultTopK, "max results")
	fs.StringVar(&f.expr, "expr", "", "extra CEL filter, e.g. 'item.samples > 500'")
	fs.Int64SliceVar(&f.exclude, "exclude", nil, "item ids never returned")
	fs.StringVar(&f.pipelineFile, "pipeline", "", "YAML pipeline with extra query nodes")
	fs.StringVar(&f.movies, "movies", "", "item catalog used to print names")
	fs.StringVar(&f.moviesFormat, "movies-format", "movielens", "catalog format: movielens or csv")
	fs.StringVarP(&f.out, "out", "o", "", "also write the query result to this CSV file")
}

// queryConfig 合并运行配置与命令行参数，命令行显式指定的优先。
func (f *queryFlags) queryConfig(cmd *cobra.Command) query.Config {
	qc := cfg.Query
	fs := cmd.Flags()
	if fs.Changed("score-threshold") {
		qc.ScoreThreshold = f.scoreThreshold
	}
	if fs.Changed("sample-threshold") {
		qc.SampleThreshold = f.sampleThreshold
	}
	if fs.Changed("top") {
		qc.TopK = f.top
	}
	if f.expr != "" {
		qc.Expr = f.expr
	}
	exclude := make([]int64, 0, len(qc.Exclude)+len(f.exclude))
	exclude = append(exclude, qc.Exclude...)
	qc.Exclude = append(exclude, f.exclude...)
	return qc
}

func (f *queryFlags) engine(cmd *cobra.Command, index core.SimilarityIndex) (*query.Engine, error) {
	opts := []query.Option{query.WithLogger(logger)}
	if f.pipelineFile != "" {
		pc, err := pipeline.LoadFromYAML(f.pipelineFile)
		if err != nil {
			return nil, fmt.Errorf("load pipeline: %w", err)
		}
		p, err := pc.BuildPipeline(config.DefaultFactory())
		if err != nil {
			return nil, fmt.Errorf("build pipeline (supported: %s): %w", strings.Join(config.SupportedTypes(), ", "), err)
		}
		opts = append(opts, query.WithNodes(p.Nodes...))
	}
	return query.NewEngine(index, f.queryConfig(cmd), opts...)
}

func (f *queryFlags) catalog() (ratings.Catalog, error) {
	if f.movies == "" {
		return ratings.Catalog{}, nil
	}
	file, err := os.Open(f.movies)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()
	switch f.moviesFormat {
	case "movielens":
		return ratings.LoadMovieLensCatalog(file)
	case "csv":
		return ratings.LoadCSVCatalog(file)
	default:
		return nil, fmt.Errorf("unknown catalog format %q", f.moviesFormat)
	}
}

// run 执行查询并打印结果。
func (f *queryFlags) run(ctx context.Context, cmd *cobra.Command, index core.SimilarityIndex) error {
	eng, err := f.engine(cmd, index)
	if err != nil {
		return err
	}
	names, err := f.catalog()
	if err != nil {
		return err
	}
	res, err := eng.Query(ctx, f.item)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), res, eng.Config().TopK, names)
	if f.out == "" {
		return nil
	}
	file, err := os.Create(f.out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := sink.NewCSVWriter(file).WriteAll(sink.FromRecommendations(res.ItemID, res.Recommendations)); err != nil {
		file.Close()
		return fmt.Errorf("write output: %w", err)
	}
	return file.Close()
}

func printResult(w io.Writer, res *query.Result, k int, names ratings.Catalog) {
	switch res.Status {
	case query.StatusUnknownItem:
		fmt.Fprintf(w, "No ratings co-occur with %s\n", names.Name(res.ItemID))
		return
	case query.StatusNoneQualified:
		fmt.Fprintf(w, "None of %d similar items for %s pass the thresholds\n", res.Candidates, names.Name(res.ItemID))
		return
	}
	fmt.Fprintf(w, "Top %d similar items for %s\n\n", k, names.Name(res.ItemID))
	for _, r := range res.Recommendations {
		fmt.Fprintf(w, "%s\tscore: %.4f\tsamples: %d\n", names.Name(r.ItemID), r.Score, r.SampleCount)
	}
}
