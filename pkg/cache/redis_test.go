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

func setupTestRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestAcquireLock_Exclusive(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	ok, err := client.AcquireLock(ctx, "lock:inventory:1", "a", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.AcquireLock(ctx, "lock:inventory:1", "b", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReleaseLock_OnlyOwnerReleases(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := client.AcquireLock(ctx, "lock:inventory:2", "owner", time.Second)
	require.NoError(t, err)

	require.NoError(t, client.ReleaseLock(ctx, "lock:inventory:2", "intruder"))
	assert.True(t, mr.Exists("lock:inventory:2"))

	require.NoError(t, client.ReleaseLock(ctx, "lock:inventory:2", "owner"))
	assert.False(t, mr.Exists("lock:inventory:2"))
}

func TestAcquireLock_ExpiresAfterTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := client.AcquireLock(ctx, "lock:inventory:3", "a", 5*time.Second)
	require.NoError(t, err)

	mr.FastForward(6 * time.Second)

	ok, err := client.AcquireLock(ctx, "lock:inventory:3", "b", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
