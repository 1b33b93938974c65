package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements a distributed sliding window with Redis sorted sets.
// Each admitted request is a member scored by its arrival time in milliseconds.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "model-eval:ratelimit:",
		now:    time.Now,
	}
}

func (rl *RedisLimiter) key(k string) string { return rl.prefix + k }

// Allow admits the request if fewer than limit requests arrived in the window.
// Rejected requests are not counted.
func (rl *RedisLimiter) Allow(ctx context.Context, k string) (Decision, error) {
	if rl.limit <= 0 {
		return Decision{Allowed: true, Remaining: -1}, nil
	}

	key := rl.key(k)
	now := rl.now()
	nowMs := now.UnixMilli()
	windowStart := now.Add(-rl.window).UnixMilli()
	member := strconv.FormatInt(nowMs, 10) + ":" + uuid.NewString()

	pipe := rl.client.TxPipeline()
	// Remove old entries outside the window
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	oldestCmd := pipe.ZRangeWithScores(ctx, key, 0, 0)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: member})
	pipe.PExpire(ctx, key, rl.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := int(countCmd.Val())
	resetAt := now.Add(rl.window)
	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		resetAt = time.UnixMilli(int64(oldest[0].Score)).Add(rl.window)
	}

	if count >= rl.limit {
		if err := rl.client.ZRem(ctx, key, member).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit rollback failed: %w", err)
		}
		return Decision{Allowed: false, Limit: rl.limit, Remaining: 0, ResetAt: resetAt}, nil
	}

	return Decision{
		Allowed:   true,
		Limit:     rl.limit,
		Remaining: rl.limit - count - 1,
		ResetAt:   resetAt,
	}, nil
}
