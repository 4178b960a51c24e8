package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rushteam/itemsim/core"
	"github.com/rushteam/itemsim/engine"
	"github.com/rushteam/itemsim/ratings"
	"github.com/rushteam/itemsim/sink"
	"github.com/rushteam/itemsim/store"
)

var (
	similarRatings      string
	similarFormat       string
	similarPartitions   int
	similarReducers     int
	similarConcurrent   int
	similarZeroNorm     string
	similarCSV          string
	similarRedis        string
	similarKafkaBrokers []string
	similarKafkaTopic   string
	similarQuery        queryFlags
)

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Compute item similarity from ratings and optionally query it",
	Long: `Load ratings, compute cosine similarity for every co-rated item pair and
optionally print the items most similar to --item.

Examples:
  itemsim similar --ratings ratings.dat --movies movies.dat --item 50
  itemsim similar --ratings ratings.csv --format csv --csv out.csv
  itemsim similar --ratings ratings.dat --redis localhost:6379
  itemsim similar --ratings ratings.dat --kafka localhost:9092 --kafka-topic item-similarity`,
	Args: cobra.NoArgs,
	RunE: runSimilar,
}

func init() {
	fs := similarCmd.Flags()
	fs.StringVarP(&similarRatings, "ratings", "r", "", "ratings file")
	fs.StringVar(&similarFormat, "format", "movielens", "ratings format: movielens (user::item::rating::ts) or csv")
	fs.IntVar(&similarPartitions, "partitions", 0, "map partitions (by user)")
	fs.IntVar(&similarReducers, "reducers", 0, "reduce buckets (by item pair)")
	fs.IntVar(&similarConcurrent, "max-concurrent", 0, "max concurrent tasks per phase (0 = unlimited)")
	fs.StringVar(&similarZeroNorm, "zero-norm", "", "zero-norm policy: drop or zero")
	fs.StringVar(&similarCSV, "csv", "", "write all scored pairs to this CSV file")
	fs.StringVar(&similarRedis, "redis", "", "write the similarity index to this Redis address")
	fs.StringSliceVar(&similarKafkaBrokers, "kafka", nil, "publish scored pairs to these Kafka brokers")
	fs.StringVar(&similarKafkaTopic, "kafka-topic", "", "Kafka topic for scored pairs")
	similarQuery.register(similarCmd)
	_ = similarCmd.MarkFlagRequired("ratings")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	applySimilarFlags(cmd)

	rs, err := loadRatings(similarRatings, similarFormat)
	if err != nil {
		return err
	}
	logger.Info("ratings loaded", "file", similarRatings, "ratings", rs.Len(), "users", rs.NumUsers(), "items", rs.NumItems())

	policy, err := engine.ParseZeroNormPolicy(cfg.Engine.ZeroNorm)
	if err != nil {
		return err
	}
	eng := &engine.Engine{
		Partitions:    cfg.Engine.Partitions,
		Reducers:      cfg.Engine.Reducers,
		MaxConcurrent: cfg.Engine.MaxConcurrent,
		ZeroNorm:      policy,
		Logger:        logger,
	}
	res, err := eng.Run(ctx, rs)
	if err != nil {
		return err
	}

	if similarCSV != "" {
		if err := writeCSV(similarCSV, res); err != nil {
			return err
		}
		logger.Info("csv written", "file", similarCSV, "results", len(res.Results()))
	}
	if cfg.Redis.Addr != "" {
		if err := saveIndex(ctx, res); err != nil {
			return err
		}
	}
	if len(cfg.Kafka.Brokers) > 0 {
		if err := publish(ctx, res); err != nil {
			return err
		}
	}

	if similarQuery.item == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d pairs, %d scored (run %s)\n", res.PairCount(), len(res.Results()), res.RunID)
		return nil
	}
	// 布隆过滤器判定一定没有评分时，不必再查相似度
	if !rs.MayHaveItem(similarQuery.item) {
		logger.Warn("item was never rated", "item", similarQuery.item)
		names, err := similarQuery.catalog()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s was never rated\n", names.Name(similarQuery.item))
		return nil
	}
	return similarQuery.run(ctx, cmd, res)
}

func applySimilarFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	if fs.Changed("partitions") {
		cfg.Engine.Partitions = similarPartitions
	}
	if fs.Changed("reducers") {
		cfg.Engine.Reducers = similarReducers
	}
	if fs.Changed("max-concurrent") {
		cfg.Engine.MaxConcurrent = similarConcurrent
	}
	if similarZeroNorm != "" {
		cfg.Engine.ZeroNorm = similarZeroNorm
	}
	if similarRedis != "" {
		cfg.Redis.Addr = similarRedis
	}
	if len(similarKafkaBrokers) > 0 {
		cfg.Kafka.Brokers = similarKafkaBrokers
	}
	if similarKafkaTopic != "" {
		cfg.Kafka.Topic = similarKafkaTopic
	}
}

func loadRatings(path, format string) (*ratings.Store, error) {
	var loader *ratings.Loader
	switch strings.ToLower(format) {
	case "movielens":
		loader = ratings.NewMovieLensLoader()
	case "csv":
		loader = ratings.NewCSVLoader()
	default:
		return nil, fmt.Errorf("unknown ratings format %q", format)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ratings: %w", err)
	}
	defer f.Close()

	rs := ratings.NewStore()
	if _, err := loader.Load(f, rs); err != nil {
		return nil, err
	}
	return rs, nil
}

func writeCSV(path string, res *engine.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := sink.NewCSVWriter(f).WriteAll(res.Results()); err != nil {
		f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}

func saveIndex(ctx context.Context, res *engine.Result) error {
	rs, err := store.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rs.Close()

	start := time.Now()
	idx := store.NewSimilarityIndex(rs, cfg.Redis.Prefix)
	if err := idx.Save(ctx, res.RunID, res.Statistics(), res.Results()); err != nil {
		return err
	}
	logger.Info("index saved", "redis", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix,
		"results", len(res.Results()), "took", time.Since(start))
	return nil
}

// resultPublisher 是 publish 依赖的发布器，Close 负责把缓冲刷出。
type resultPublisher interface {
	Publish(ctx context.Context, runID string, results []core.SimilarityResult) error
	Close(ctx context.Context) error
}

var newPublisher = func(c sink.KafkaConfig) (resultPublisher, error) {
	return sink.NewKafkaPublisher(c)
}

func publish(ctx context.Context, res *engine.Result) error {
	p, err := newPublisher(cfg.Kafka)
	if err != nil {
		return err
	}
	if err := p.Publish(ctx, res.RunID, res.Results()); err != nil {
		_ = p.Close(ctx)
		return err
	}
	if err := p.Close(ctx); err != nil {
		return err
	}
	logger.Info("results published", "topic", cfg.Kafka.Topic, "results", len(res.Results()))
	return nil
}
