// Package engine 实现物品相似度的批处理计算：
// map（按用户生成物品对并局部聚合）→ shuffle（按物品对分桶）→ reduce（合并并打分）。
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/itemsim/core"
	"github.com/rushteam/itemsim/ratings"
)

// cancelCheckEvery 是 map 任务检查 ctx 的用户间隔。
const cancelCheckEvery = 64

// Engine 在单进程内模拟分区批处理：每个分区 / 分桶一个 goroutine，阶段之间是屏障。
//
// 使用示例：
//
//	eng := &engine.Engine{Partitions: 16, Reducers: 16}
//	res, err := eng.Run(ctx, store)
type Engine struct {
	// Partitions map 阶段分区数（按 userID 划分），<= 0 时使用 core.DefaultPartitions
	Partitions int

	// Reducers reduce 阶段分桶数（按物品对划分），<= 0 时使用 core.DefaultReducers
	Reducers int

	// MaxConcurrent 同时运行的任务上限（0 表示无限制）
	MaxConcurrent int

	// ZeroNorm 分母为 0 的物品对的处理策略，默认 ZeroNormDrop
	ZeroNorm ZeroNormPolicy

	Logger *slog.Logger
}

type mapOutput struct {
	buckets []Aggregate
	emitted int64
}

type reduceOutput struct {
	stats   []core.PairStatistic
	results []core.SimilarityResult
}

// Run 执行一次完整的批处理。
// ctx 被取消时返回 CANCELED 错误，不返回任何部分结果。
func (e *Engine) Run(ctx context.Context, store *ratings.Store) (*Result, error) {
	if store == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: nil rating store")
	}
	policy, err := ParseZeroNormPolicy(string(e.ZeroNorm))
	if err != nil {
		return nil, err
	}
	nParts, nBuckets := e.Partitions, e.Reducers
	if nParts <= 0 {
		nParts = core.DefaultPartitions
	}
	if nBuckets <= 0 {
		nBuckets = core.DefaultReducers
	}

	runID := uuid.NewString()
	log := e.logger().With("run_id", runID)
	started := time.Now()
	log.Info("similarity run started",
		"ratings", store.Len(), "users", store.NumUsers(), "items", store.NumItems(),
		"partitions", nParts, "reducers", nBuckets, "zero_norm", string(policy))

	// map 阶段
	parts := store.Partition(nParts)
	mapOut := make([]mapOutput, len(parts))
	if err := e.runPhase(ctx, len(parts), func(ctx context.Context, i int) error {
		out, err := mapPartition(ctx, parts[i], nBuckets)
		if err != nil {
			return err
		}
		mapOut[i] = out
		return nil
	}); err != nil {
		return nil, e.abort(log, "map", err)
	}
	mapDone := time.Now()

	var emitted int64
	for _, out := range mapOut {
		emitted += out.emitted
	}
	log.Debug("map phase finished", "emitted_pairs", emitted, "elapsed", mapDone.Sub(started))

	// 屏障之后才能开始 reduce：每个分桶需要全部 map 任务的输出
	if err := ctx.Err(); err != nil {
		return nil, e.abort(log, "shuffle", err)
	}

	reduceOut := make([]reduceOutput, nBuckets)
	if err := e.runPhase(ctx, nBuckets, func(ctx context.Context, b int) error {
		agg := NewAggregate()
		for p := range mapOut {
			if err := ctx.Err(); err != nil {
				return err
			}
			agg.Merge(mapOut[p].buckets[b])
		}
		reduceOut[b] = scoreBucket(agg, policy)
		return nil
	}); err != nil {
		return nil, e.abort(log, "reduce", err)
	}
	reduceDone := time.Now()

	res := newResult(runID, policy, reduceOut)
	res.EmittedPairs = emitted
	res.StartedAt = started
	res.MapDuration = mapDone.Sub(started)
	res.ReduceDuration = reduceDone.Sub(mapDone)

	log.Info("similarity run finished",
		"emitted_pairs", emitted, "distinct_pairs", res.PairCount(),
		"scored_pairs", len(res.results), "elapsed", reduceDone.Sub(started))
	return res, nil
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// runPhase 并发执行 n 个任务并等待全部完成（阶段屏障）。
func (e *Engine) runPhase(ctx context.Context, n int, task func(ctx context.Context, i int) error) error {
	eg, gctx := errgroup.WithContext(ctx)
	if e.MaxConcurrent > 0 {
		eg.SetLimit(e.MaxConcurrent)
	}
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return task(gctx, i)
		})
	}
	return eg.Wait()
}

func (e *Engine) abort(log *slog.Logger, phase string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.Warn("similarity run canceled", "phase", phase, "error", err)
		return core.WrapDomainError(core.ModuleEngine, core.ErrorCodeCanceled, err, "engine: run canceled in %s phase", phase)
	}
	log.Error("similarity run failed", "phase", phase, "error", err)
	return core.WrapDomainError(core.ModuleEngine, core.ErrorCodeInternalError, err, "engine: %s phase", phase)
}

// mapPartition 为分区内每个用户生成物品对，并按分桶做局部聚合（combiner）。
func mapPartition(ctx context.Context, part ratings.Partition, nBuckets int) (mapOutput, error) {
	out := mapOutput{buckets: make([]Aggregate, nBuckets)}
	for i := range out.buckets {
		out.buckets[i] = NewAggregate()
	}
	for i, u := range part.Users {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return mapOutput{}, err
			}
		}
		GeneratePairs(u, func(pr core.PairRating) bool {
			out.buckets[BucketOf(pr.Pair, nBuckets)].Add(pr)
			out.emitted++
			return true
		})
	}
	return out, nil
}

func scoreBucket(agg Aggregate, policy ZeroNormPolicy) reduceOutput {
	stats := agg.Statistics()
	results := make([]core.SimilarityResult, 0, len(stats))
	for _, st := range stats {
		if res, ok := Score(st, policy); ok {
			results = append(results, res)
		}
	}
	return reduceOutput{stats: stats, results: results}
}
