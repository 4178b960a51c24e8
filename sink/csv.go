// Package sink 把相似度结果写出到外部：CSV 文件、Kafka。
package sink

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rushteam/itemsim/core"
)

// CSVHeader 与离线作业的输出表头保持一致。
var CSVHeader = []string{"movieID1", "movieID2", "cosineSimilarityScore", "noSamples"}

// CSVWriter 以 "A,B,score,samples" 行写出相似度结果，首行为表头。
type CSVWriter struct {
	w       *csv.Writer
	started bool
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write 写入一条结果，第一次调用时先写表头。
func (c *CSVWriter) Write(r core.SimilarityResult) error {
	if !c.started {
		if err := c.w.Write(CSVHeader); err != nil {
			return err
		}
		c.started = true
	}
	return c.w.Write([]string{
		strconv.FormatInt(r.ItemA, 10),
		strconv.FormatInt(r.ItemB, 10),
		strconv.FormatFloat(r.Score, 'g', -1, 64),
		strconv.FormatInt(r.SampleCount, 10),
	})
}

// WriteAll 写入全部结果并 Flush；结果为空时也会写出表头。
func (c *CSVWriter) WriteAll(results []core.SimilarityResult) error {
	for _, r := range results {
		if err := c.Write(r); err != nil {
			return err
		}
	}
	if !c.started {
		if err := c.w.Write(CSVHeader); err != nil {
			return err
		}
		c.started = true
	}
	return c.Flush()
}

func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// FromRecommendations 把查询结果还原为规范化的物品对结果，保持原有顺序。
func FromRecommendations(itemID int64, recs []core.Recommendation) []core.SimilarityResult {
	out := make([]core.SimilarityResult, 0, len(recs))
	for _, rec := range recs {
		pair := core.NewItemPair(itemID, rec.ItemID)
		out = append(out, core.SimilarityResult{
			ItemA:       pair.A,
			ItemB:       pair.B,
			Score:       rec.Score,
			SampleCount: rec.SampleCount,
		})
	}
	return out
}
