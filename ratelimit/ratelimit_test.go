package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		limiter := NewRedisLimiter(setupTestRedis(t), 5, time.Minute)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			d, err := limiter.Allow(ctx, "user-1")
			require.NoError(t, err)
			assert.True(t, d.Allowed)
			assert.Equal(t, 5-i-1, d.Remaining)
			assert.False(t, d.ResetAt.IsZero())
		}
	})

	t.Run("blocks requests over limit without counting them", func(t *testing.T) {
		client := setupTestRedis(t)
		limiter := NewRedisLimiter(client, 3, time.Minute)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			d, err := limiter.Allow(ctx, "user-2")
			require.NoError(t, err)
			assert.True(t, d.Allowed)
		}

		d, err := limiter.Allow(ctx, "user-2")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, 0, d.Remaining)

		members, err := client.ZCard(ctx, limiter.key("user-2")).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(3), members)
	})

	t.Run("window slides", func(t *testing.T) {
		limiter := NewRedisLimiter(setupTestRedis(t), 2, time.Minute)
		ctx := context.Background()
		base := time.Now()
		limiter.now = func() time.Time { return base }

		for i := 0; i < 2; i++ {
			d, err := limiter.Allow(ctx, "user-3")
			require.NoError(t, err)
			assert.True(t, d.Allowed)
		}
		d, err := limiter.Allow(ctx, "user-3")
		require.NoError(t, err)
		assert.False(t, d.Allowed)

		limiter.now = func() time.Time { return base.Add(61 * time.Second) }
		d, err = limiter.Allow(ctx, "user-3")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 1, d.Remaining)
	})

	t.Run("unlimited when limit is 0", func(t *testing.T) {
		limiter := NewRedisLimiter(setupTestRedis(t), 0, time.Minute)
		for i := 0; i < 20; i++ {
			d, err := limiter.Allow(context.Background(), "user-5")
			require.NoError(t, err)
			assert.True(t, d.Allowed)
			assert.Equal(t, -1, d.Remaining)
		}
	})
}

func TestRedisLimiterReportsBackendErrors(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	_, err = NewRedisLimiter(client, 1, time.Minute).Allow(context.Background(), "k")
	assert.Error(t, err)
}

func TestMemoryLimiter(t *testing.T) {
	base := time.Now()
	l := NewMemoryLimiter(2, 15*time.Minute)
	l.now = func() time.Time { return base }
	ctx := context.Background()

	d, _ := l.Allow(ctx, "a")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	d, _ = l.Allow(ctx, "a")
	assert.True(t, d.Allowed)
	d, _ = l.Allow(ctx, "a")
	assert.False(t, d.Allowed)
	assert.Equal(t, base.Add(15*time.Minute), d.ResetAt)

	d, _ = l.Allow(ctx, "b")
	assert.True(t, d.Allowed, "keys are independent")

	l.now = func() time.Time { return base.Add(15 * time.Minute) }
	d, _ = l.Allow(ctx, "a")
	assert.True(t, d.Allowed)
	assert.Len(t, l.windows, 1, "expired windows are swept")
}

func TestNoopLimiter(t *testing.T) {
	var l Limiter = NewNoopLimiter()
	for i := 0; i < 100; i++ {
		d, err := l.Allow(context.Background(), "any-key")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
}
