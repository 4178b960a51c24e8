package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rushteam/itemsim/ratings"
	"github.com/rushteam/itemsim/store"
)

var (
	queryRedis  string
	queryPrefix string
	queryBest   int64
	queryFlagsV queryFlags
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a similarity index previously written to Redis",
	Long: `Read the neighbour list of --item from a Redis similarity index written by
'itemsim similar --redis', then filter, rank and print it.

Examples:
  itemsim query --redis localhost:6379 --item 50 --movies movies.dat
  itemsim query --redis localhost:6379 --item 50 --score-threshold 0.9 --top 20
  itemsim query --redis localhost:6379 --best 10 --movies movies.dat`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryRedis, "redis", "", "Redis address of the similarity index")
	queryCmd.Flags().StringVar(&queryPrefix, "prefix", "", "index key prefix")
	queryCmd.Flags().Int64Var(&queryBest, "best", 0, "print the n items with the highest similarity in the index")
	queryFlagsV.register(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if queryFlagsV.item == 0 && queryBest <= 0 {
		return errors.New("one of --item or --best is required")
	}
	if queryRedis != "" {
		cfg.Redis.Addr = queryRedis
	}
	if queryPrefix != "" {
		cfg.Redis.Prefix = queryPrefix
	}

	rs, err := store.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rs.Close()

	idx := store.NewSimilarityIndex(rs, cfg.Redis.Prefix)
	if meta, err := idx.Meta(ctx); err == nil {
		logger.Info("index loaded", "run", meta.RunID, "items", meta.Items, "scored_pairs", meta.ScoredPairs)
	}
	if queryBest > 0 {
		names, err := queryFlagsV.catalog()
		if err != nil {
			return err
		}
		if err := printBest(ctx, cmd.OutOrStdout(), idx, queryBest, names); err != nil {
			return err
		}
		if queryFlagsV.item == 0 {
			return nil
		}
	}
	return queryFlagsV.run(ctx, cmd, idx)
}

// printBest 打印索引中最高相似度排名前 n 的物品。
func printBest(ctx context.Context, w io.Writer, idx *store.SimilarityIndex, n int64, names ratings.Catalog) error {
	best, err := idx.BestItems(ctx, n)
	if err != nil {
		return fmt.Errorf("read best items: %w", err)
	}
	fmt.Fprintf(w, "Top %d items by best similarity\n\n", n)
	for i, id := range best {
		fmt.Fprintf(w, "%d\t%s\n", i+1, names.Name(id))
	}
	return nil
}
