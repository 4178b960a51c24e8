package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRun(t *testing.T) {
	cfg := DefaultRun()
	assert.Equal(t, 8, cfg.Engine.Partitions)
	assert.Equal(t, 8, cfg.Engine.Reducers)
	assert.Equal(t, "drop", cfg.Engine.ZeroNorm)
	assert.Equal(t, 0.97, cfg.Query.ScoreThreshold)
	assert.Equal(t, int64(100), cfg.Query.SampleThreshold)
	assert.Equal(t, 10, cfg.Query.TopK)
	assert.Equal(t, "itemsim", cfg.Redis.Prefix)
}

func TestLoadRun_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  partitions: 16
  zero_norm: zero
query:
  score_threshold: 0.9
  top_k: 5
kafka:
  brokers: [a:9092, b:9092]
  topic: sims
`), 0o644))

	cfg, err := LoadRun(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Engine.Partitions)
	assert.Equal(t, 8, cfg.Engine.Reducers)
	assert.Equal(t, "zero", cfg.Engine.ZeroNorm)
	assert.Equal(t, 0.9, cfg.Query.ScoreThreshold)
	assert.Equal(t, int64(100), cfg.Query.SampleThreshold)
	assert.Equal(t, 5, cfg.Query.TopK)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "sims", cfg.Kafka.Topic)

	_, err = LoadRun(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRun_ApplyEnv(t *testing.T) {
	env := map[string]string{
		"ITEMSIM_PARTITIONS":       "4",
		"ITEMSIM_REDIS_ADDR":       "redis:6379",
		"ITEMSIM_KAFKA_BROKERS":    "k1:9092,k2:9092",
		"ITEMSIM_SCORE_THRESHOLD":  "0.5",
		"ITEMSIM_SAMPLE_THRESHOLD": "20",
		"ITEMSIM_LOG_LEVEL":        "debug",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultRun()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, 4, cfg.Engine.Partitions)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 0.5, cfg.Query.ScoreThreshold)
	assert.Equal(t, int64(20), cfg.Query.SampleThreshold)
	assert.Equal(t, "debug", cfg.Log.Level)

	env["ITEMSIM_REDUCERS"] = "many"
	assert.ErrorContains(t, cfg.ApplyEnv(lookup), "ITEMSIM_REDUCERS")
}

func TestLoadRun_Env(t *testing.T) {
	t.Setenv("ITEMSIM_TOP_K", "3")
	cfg, err := LoadRun("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Query.TopK)
}
