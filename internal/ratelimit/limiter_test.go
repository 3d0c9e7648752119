package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowLimiterRedis(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter("redis://"+redis.Addr(), "test:ratelimit", 2, time.Minute)
	require.NoError(t, err)
	defer limiter.Close()
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "ip-1"), "first request should pass")
	assert.True(t, limiter.Allow(ctx, "ip-1"), "second request should pass")
	assert.False(t, limiter.Allow(ctx, "ip-1"), "third request should be blocked")
	assert.True(t, limiter.Allow(ctx, "ip-2"), "other keys have their own window")
}

func TestFixedWindowLimiterRedisFailClosed(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter("redis://"+redis.Addr(), "test:ratelimit", 1, time.Minute)
	require.NoError(t, err)
	defer limiter.Close()

	redis.Close()
	assert.False(t, limiter.Allow(context.Background(), "ip-1"), "limiter should fail closed on redis errors")
}

func TestFixedWindowLimiterRequiresURL(t *testing.T) {
	limiter, err := NewRedisFixedWindowLimiter("", "test:ratelimit", 1, time.Second)
	assert.Error(t, err)
	assert.Nil(t, limiter)

	_, err = NewRedisFixedWindowLimiter("redis://localhost:6379", "", 0, time.Second)
	assert.Error(t, err)
}

func TestLocalLimiter(t *testing.T) {
	limiter, err := NewLocalLimiter(3, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(ctx, "user-a"))
	}
	assert.False(t, limiter.Allow(ctx, "user-a"))
	assert.True(t, limiter.Allow(ctx, "user-b"))
}
