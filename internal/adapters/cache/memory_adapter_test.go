package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAdapter_SetGet(t *testing.T) {
	c := NewMemoryAdapter(10, 60)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryAdapter_MissingKey(t *testing.T) {
	c := NewMemoryAdapter(10, 60)

	_, err := c.Get(context.Background(), "nope")
	assert.Error(t, err)
}

func TestMemoryAdapter_Delete(t *testing.T) {
	c := NewMemoryAdapter(10, 60)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.Error(t, err)
}

func TestMemoryAdapter_EvictsAtCapacity(t *testing.T) {
	c := NewMemoryAdapter(2, 60)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	_, err := c.Get(ctx, "a")
	assert.Error(t, err, "oldest entry should have been evicted")

	got, err := c.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), got)
}
