package sink

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/itemsim/core"
)

func TestCSVWriter_WriteAll(t *testing.T) {
	var buf bytes.Buffer
	err := NewCSVWriter(&buf).WriteAll([]core.SimilarityResult{
		{ItemA: 10, ItemB: 20, Score: 0.5, SampleCount: 3},
		{ItemA: 10, ItemB: 30, Score: 1, SampleCount: 120},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"movieID1,movieID2,cosineSimilarityScore,noSamples\n10,20,0.5,3\n10,30,1,120\n",
		buf.String())
}

func TestCSVWriter_EmptyWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(&buf).WriteAll(nil))
	assert.Equal(t, "movieID1,movieID2,cosineSimilarityScore,noSamples\n", buf.String())
}

func TestFromRecommendations(t *testing.T) {
	got := FromRecommendations(50, []core.Recommendation{
		{ItemID: 80, Score: 0.99, SampleCount: 200},
		{ItemID: 10, Score: 0.98, SampleCount: 150},
	})
	assert.Equal(t, []core.SimilarityResult{
		{ItemA: 50, ItemB: 80, Score: 0.99, SampleCount: 200},
		{ItemA: 10, ItemB: 50, Score: 0.98, SampleCount: 150},
	}, got)
}
