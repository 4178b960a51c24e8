package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rushteam/itemsim/core"
)

// KafkaConfig Kafka 发布配置
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" json:"brokers"`
	Topic   string   `yaml:"topic" json:"topic"`

	ClientID    string `yaml:"client_id" json:"client_id"`
	BatchSize   int    `yaml:"batch_size" json:"batch_size"`   // 每次 ProduceSync 的记录数（默认 500）
	Compression string `yaml:"compression" json:"compression"` // gzip / snappy / lz4 / zstd
	MaxRetries  int    `yaml:"max_retries" json:"max_retries"`
}

// ResultMessage 是写入 Kafka 的消息体，key 为 "A:B"。
type ResultMessage struct {
	RunID       string  `json:"run_id"`
	ItemA       int64   `json:"item_a"`
	ItemB       int64   `json:"item_b"`
	Score       float64 `json:"score"`
	SampleCount int64   `json:"samples"`
	ProducedAt  int64   `json:"produced_at"`
}

// KafkaPublisher 把相似度结果批量发布到 Kafka，供下游服务增量加载。
type KafkaPublisher struct {
	client    *kgo.Client
	topic     string
	batchSize int
}

// NewKafkaPublisher 创建发布器。
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, core.NewDomainError(core.ModuleSink, core.ErrorCodeInvalidInput, "sink: kafka brokers and topic are required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "itemsim-publisher"
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordRetries(cfg.MaxRetries),
	}
	switch cfg.Compression {
	case "gzip":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.GzipCompression()))
	case "snappy":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.SnappyCompression()))
	case "lz4":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.Lz4Compression()))
	case "zstd":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.ZstdCompression()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleSink, core.ErrorCodeUnavailable, err, "sink: create kafka client")
	}
	return &KafkaPublisher{client: client, topic: cfg.Topic, batchSize: cfg.BatchSize}, nil
}

// Publish 同步发布全部结果，任何一批失败立即返回。
func (p *KafkaPublisher) Publish(ctx context.Context, runID string, results []core.SimilarityResult) error {
	now := time.Now().UnixMilli()
	batch := make([]*kgo.Record, 0, p.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.client.ProduceSync(ctx, batch...).FirstErr(); err != nil {
			return core.WrapDomainError(core.ModuleSink, core.ErrorCodeUnavailable, err, "sink: produce to %s", p.topic)
		}
		batch = batch[:0]
		return nil
	}

	for _, r := range results {
		rec, err := EncodeRecord(p.topic, runID, r, now)
		if err != nil {
			return err
		}
		batch = append(batch, rec)
		if len(batch) >= p.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// Close 刷新缓冲并关闭客户端。
func (p *KafkaPublisher) Close(ctx context.Context) error {
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}

// EncodeRecord 把一条结果编码为 Kafka 记录，同一物品对总是落在同一分区。
func EncodeRecord(topic, runID string, r core.SimilarityResult, producedAt int64) (*kgo.Record, error) {
	value, err := json.Marshal(ResultMessage{
		RunID:       runID,
		ItemA:       r.ItemA,
		ItemB:       r.ItemB,
		Score:       r.Score,
		SampleCount: r.SampleCount,
		ProducedAt:  producedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode result %d-%d: %w", r.ItemA, r.ItemB, err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(strconv.FormatInt(r.ItemA, 10) + ":" + strconv.FormatInt(r.ItemB, 10)),
		Value: value,
	}, nil
}
