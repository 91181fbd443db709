package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis is the distributed Guard: post timestamps live in a per-identity
// sorted set scored by unix nanos, so multiple instances share one window.
// Keys expire on their own; no sweeper goroutine is needed.
type Redis struct {
	rdb      *redis.Client
	window   time.Duration
	maxPosts int
}

func NewRedis(rdb *redis.Client, window time.Duration, maxPosts int) *Redis {
	return &Redis{rdb: rdb, window: window, maxPosts: maxPosts}
}

func (r *Redis) key(identity string) string {
	return "ratelimit:posts:" + identity
}

func (r *Redis) Check(ctx context.Context, identity string) (bool, error) {
	key := r.key(identity)
	windowStart := time.Now().Add(-r.window).UnixNano()

	pipe := r.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%d", windowStart))
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check for %s: %w", identity, err)
	}

	return card.Val() < int64(r.maxPosts), nil
}

func (r *Redis) Record(ctx context.Context, identity string) error {
	key := r.key(identity)
	now := time.Now()

	pipe := r.rdb.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score: float64(now.UnixNano()),
		// uuid suffix keeps members unique when two posts land in the same nano
		Member: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
	})
	pipe.Expire(ctx, key, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rate limit record for %s: %w", identity, err)
	}
	return nil
}
