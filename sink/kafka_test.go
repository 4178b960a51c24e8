package sink

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/itemsim/core"
)

func TestEncodeRecord(t *testing.T) {
	r := core.SimilarityResult{ItemA: 10, ItemB: 20, Score: 0.8737, SampleCount: 3}
	rec, err := EncodeRecord("item-similarity", "run-1", r, 1700000000000)
	require.NoError(t, err)

	assert.Equal(t, "item-similarity", rec.Topic)
	assert.Equal(t, "10:20", string(rec.Key))

	var msg ResultMessage
	require.NoError(t, json.Unmarshal(rec.Value, &msg))
	assert.Equal(t, ResultMessage{
		RunID:       "run-1",
		ItemA:       10,
		ItemB:       20,
		Score:       0.8737,
		SampleCount: 3,
		ProducedAt:  1700000000000,
	}, msg)
}

func TestNewKafkaPublisher_RequiresTopic(t *testing.T) {
	_, err := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}})
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))

	_, err = NewKafkaPublisher(KafkaConfig{Topic: "t"})
	assert.True(t, core.IsInvalidInput(err))
}
