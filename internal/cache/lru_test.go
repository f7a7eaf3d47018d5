package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSet(t *testing.T) {
	c, err := NewMemoryCache(4)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()

	_, ok, err := c.Get(ctx, "report:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "report:1", []byte(`{"generation":1}`)))

	val, ok, err := c.Get(ctx, "report:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"generation":1}`, string(val))
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	c, err := NewMemoryCache(2)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("report:%d", i), []byte("x")))
	}

	_, ok, _ := c.Get(ctx, "report:1")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok, _ = c.Get(ctx, "report:3")
	assert.True(t, ok)
}

func TestNewMemoryCache_DefaultSize(t *testing.T) {
	c, err := NewMemoryCache(0)
	require.NoError(t, err)
	assert.NotNil(t, c)
}
