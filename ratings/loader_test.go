package ratings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/itemsim/core"
)

func TestLoader_MovieLens(t *testing.T) {
	input := "1::10::5::978300760\n1::20::5::978302109\n\n2::10::4::978301968\n"
	s := NewStore()
	n, err := NewMovieLensLoader().Load(strings.NewReader(input), s)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, s.NumUsers())
	assert.Equal(t, 2, s.NumItems())
}

func TestLoader_CSV(t *testing.T) {
	input := "userId,movieId,rating,timestamp\n1,10,4,964982703\n1,20,3\n"
	s := NewStore()
	n, err := NewCSVLoader().Load(strings.NewReader(input), s)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	u, ok := s.User(1)
	require.True(t, ok)
	assert.Equal(t, int64(0), u.Ratings[1].Timestamp)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"too few fields", "1::10\n", "line 1"},
		{"bad user id", "1::10::5::1\nx::10::5::1\n", "line 2"},
		{"non positive item", "1::0::5::1\n", "item id must be positive"},
		{"rating too high", "1::10::6::1\n", "out of range"},
		{"rating too low", "1::10::0::1\n", "out of range"},
		{"bad timestamp", "1::10::3::yesterday\n", "timestamp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMovieLensLoader().Load(strings.NewReader(tt.input), NewStore())
			require.Error(t, err)
			assert.True(t, core.IsInvalidInput(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoader_CustomRange(t *testing.T) {
	l := &Loader{Separator: "\t", MinRating: 1, MaxRating: 10}
	s := NewStore()
	n, err := l.Load(strings.NewReader("1\t10\t9\n"), s)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLoadHelpers(t *testing.T) {
	s := NewStore()
	n, err := LoadMovieLens(strings.NewReader("1::10::5::1\n"), s)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = LoadCSV(strings.NewReader("1;20;4\n2;20;3\n"), ';', false, s)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, s.ItemRaters(20))
}
