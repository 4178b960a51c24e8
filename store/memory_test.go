package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/itemsim/core"
)

func TestMemoryStore_KV(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	defer ms.Close()

	_, err := ms.Get(ctx, "missing")
	assert.True(t, core.IsStoreNotFound(err))

	require.NoError(t, ms.Set(ctx, "a", []byte("1")))
	require.NoError(t, ms.BatchSet(ctx, map[string][]byte{"b": []byte("2"), "c": []byte("3")}))

	got, err := ms.BatchGet(ctx, []string{"a", "b", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, got)

	require.NoError(t, ms.Delete(ctx, "a"))
	_, err = ms.Get(ctx, "a")
	assert.True(t, core.IsStoreNotFound(err))
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	defer ms.Close()

	require.NoError(t, ms.Set(ctx, "short", []byte("x"), 1))
	_, err := ms.Get(ctx, "short")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = ms.Get(ctx, "short")
	assert.True(t, core.IsStoreNotFound(err))
}

func TestMemoryStore_ZRange(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	defer ms.Close()

	require.NoError(t, ms.ZAdd(ctx, "z", 0.5, "a"))
	require.NoError(t, ms.ZAdd(ctx, "z", 0.9, "b"))
	require.NoError(t, ms.ZAdd(ctx, "z", 0.7, "c"))

	all, err := ms.ZRange(ctx, "z", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, all)

	top, err := ms.ZRange(ctx, "z", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, top)

	score, err := ms.ZScore(ctx, "z", "c")
	require.NoError(t, err)
	assert.Equal(t, 0.7, score)

	_, err = ms.ZScore(ctx, "z", "missing")
	assert.True(t, core.IsStoreNotFound(err))
}

func TestMemoryStore_Hash(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	defer ms.Close()

	require.NoError(t, ms.HSet(ctx, "h", "f1", []byte("v1")))
	require.NoError(t, ms.HMSet(ctx, "h", map[string][]byte{"f2": []byte("v2")}))

	v, err := ms.HGet(ctx, "h", "f2")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	all, err := ms.HGetAll(ctx, "h")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = ms.HGet(ctx, "h", "missing")
	assert.True(t, core.IsStoreNotFound(err))
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	ms := NewMemoryStore()
	assert.NoError(t, ms.Close())
	assert.NoError(t, ms.Close())
}

func TestNewRedisStore_Unavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisStore(ctx, "127.0.0.1:1", 0)
	require.Error(t, err)
	assert.True(t, core.IsUnavailable(err))
}
