package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/itemsim/core"
	"github.com/rushteam/itemsim/query"
	"github.com/rushteam/itemsim/sink"
)

// Run 是一次批处理 + 查询的完整配置。
//
//	engine:
//	  partitions: 8
//	  reducers: 8
//	  max_concurrent: 4
//	  zero_norm: drop
//	query:
//	  score_threshold: 0.97
//	  sample_threshold: 100
//	  top_k: 10
//	redis:
//	  addr: localhost:6379
//	  prefix: itemsim
//	kafka:
//	  brokers: [localhost:9092]
//	  topic: item-similarity
//	log:
//	  level: info
//	  file: /tmp/itemsim.log
type Run struct {
	Engine EngineConfig     `yaml:"engine"`
	Query  query.Config     `yaml:"query"`
	Redis  RedisConfig      `yaml:"redis"`
	Kafka  sink.KafkaConfig `yaml:"kafka"`
	Log    LogConfig        `yaml:"log"`
}

type EngineConfig struct {
	Partitions    int    `yaml:"partitions"`
	Reducers      int    `yaml:"reducers"`
	MaxConcurrent int    `yaml:"max_concurrent"`
	ZeroNorm      string `yaml:"zero_norm"`
}

// RedisConfig 为空 Addr 时不写入 Redis。
type RedisConfig struct {
	Addr   string `yaml:"addr"`
	DB     int    `yaml:"db"`
	Prefix string `yaml:"prefix"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultRun 返回默认配置。
func DefaultRun() Run {
	return Run{
		Engine: EngineConfig{
			Partitions: core.DefaultPartitions,
			Reducers:   core.DefaultReducers,
			ZeroNorm:   "drop",
		},
		Query: query.DefaultConfig(),
		Redis: RedisConfig{Prefix: "itemsim"},
		Log:   LogConfig{Level: "info"},
	}
}

// LoadRun 读取 YAML 配置（path 为空时只用默认值），再应用 ITEMSIM_* 环境变量。
func LoadRun(path string) (Run, error) {
	cfg := DefaultRun()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv 用环境变量覆盖配置，lookup 通常是 os.LookupEnv。
func (r *Run) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("ITEMSIM_ZERO_NORM", &r.Engine.ZeroNorm)
	str("ITEMSIM_REDIS_ADDR", &r.Redis.Addr)
	str("ITEMSIM_REDIS_PREFIX", &r.Redis.Prefix)
	str("ITEMSIM_KAFKA_TOPIC", &r.Kafka.Topic)
	str("ITEMSIM_LOG_LEVEL", &r.Log.Level)
	str("ITEMSIM_LOG_FILE", &r.Log.File)
	if v, ok := lookup("ITEMSIM_KAFKA_BROKERS"); ok && v != "" {
		r.Kafka.Brokers = strings.Split(v, ",")
	}
	for key, dst := range map[string]*int{
		"ITEMSIM_PARTITIONS":     &r.Engine.Partitions,
		"ITEMSIM_REDUCERS":       &r.Engine.Reducers,
		"ITEMSIM_MAX_CONCURRENT": &r.Engine.MaxConcurrent,
		"ITEMSIM_REDIS_DB":       &r.Redis.DB,
		"ITEMSIM_TOP_K":          &r.Query.TopK,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	if v, ok := lookup("ITEMSIM_SCORE_THRESHOLD"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ITEMSIM_SCORE_THRESHOLD: %w", err)
		}
		r.Query.ScoreThreshold = f
	}
	if v, ok := lookup("ITEMSIM_SAMPLE_THRESHOLD"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ITEMSIM_SAMPLE_THRESHOLD: %w", err)
		}
		r.Query.SampleThreshold = n
	}
	return nil
}
