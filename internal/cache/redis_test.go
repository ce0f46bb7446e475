package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/egannguyen/sales-orders/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live server: REDIS_ADDR=localhost:6379 go test ./internal/cache
func TestReportCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()

	client, err := cache.Connect(ctx, addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewReportCache(client, time.Minute)
	require.NoError(t, c.Invalidate(ctx))

	var got []int
	hit, err := c.Get(ctx, "top-clients", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "top-clients", []int{3, 2, 1}))
	hit, err = c.Get(ctx, "top-clients", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []int{3, 2, 1}, got)

	require.NoError(t, c.Invalidate(ctx))
	hit, err = c.Get(ctx, "top-clients", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
