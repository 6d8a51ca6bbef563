package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

type payload struct {
	Total int            `json:"total"`
	ByKey map[string]int `json:"byKey"`
}

func TestGetSet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var got payload
	found, err := c.Get(ctx, "issues", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "issues", payload{Total: 3, ByKey: map[string]int{"POTHOLE": 3}}))

	found, err = c.Get(ctx, "issues", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Total: 3, ByKey: map[string]int{"POTHOLE": 3}}, got)
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "issues", payload{Total: 1}))
	require.NoError(t, c.Invalidate(ctx))

	var got payload
	found, err := c.Get(ctx, "issues", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "issues", payload{Total: 1}))
	mr.FastForward(2 * time.Minute)

	var got payload
	found, err := c.Get(ctx, "issues", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient("redis://localhost:6379/2")
	require.NoError(t, err)
	assert.Equal(t, 2, client.Options().DB)
	_ = client.Close()

	_, err = NewRedisClient("http://nope")
	assert.Error(t, err)
}
