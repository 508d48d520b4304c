// Package cache memoizes computed reports in Redis. A nil *ReportCache is
// valid and disables caching.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "inventory-dashboard:report:"

type Options struct {
	TTL      time.Duration
	SlowAt   time.Duration
	LockTTL  time.Duration
	LockWait time.Duration
}

type ReportCache struct {
	rdb    *redis.Client
	locker *redislock.Client
	opts   Options
	logger *slog.Logger
}

// Connect returns nil when redisURL is empty.
func Connect(ctx context.Context, redisURL string, opts Options, logger *slog.Logger) (*ReportCache, error) {
	if redisURL == "" {
		return nil, nil
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(rdb, opts, logger), nil
}

func New(rdb *redis.Client, opts Options, logger *slog.Logger) *ReportCache {
	if opts.TTL <= 0 {
		opts.TTL = 120 * time.Second
	}
	if opts.SlowAt <= 0 {
		opts.SlowAt = 500 * time.Millisecond
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 15 * time.Second
	}
	if opts.LockWait <= 0 {
		opts.LockWait = 2 * time.Second
	}
	return &ReportCache{rdb: rdb, locker: redislock.New(rdb), opts: opts, logger: logger}
}

func (c *ReportCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// ComputeFunc builds a report. Results with cacheable=false (for example
// reports missing a brand that failed to load) are returned but not stored.
type ComputeFunc[T any] func(ctx context.Context) (value T, cacheable bool, err error)

// Fetch returns the cached report for key or computes it. Concurrent misses
// across instances are serialized by a short Redis lock so only one of them
// hits the database; waiters that cannot get the lock compute anyway. Redis
// errors never fail the request.
func Fetch[T any](ctx context.Context, c *ReportCache, name, key string, compute ComputeFunc[T]) (T, error) {
	if c == nil {
		v, _, err := compute(ctx)
		return v, err
	}

	fullKey := keyPrefix + name + ":" + key
	if v, ok := get[T](ctx, c, fullKey); ok {
		return v, nil
	}

	lock, err := c.locker.Obtain(ctx, fullKey+":lock", c.opts.LockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), int(c.opts.LockWait/(100*time.Millisecond))),
	})
	switch {
	case err == nil:
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				c.logger.Warn("report_cache_error", "op", "release", "key", fullKey, "error", err)
			}
		}()
		if v, ok := get[T](ctx, c, fullKey); ok {
			return v, nil
		}
	case errors.Is(err, redislock.ErrNotObtained):
		if v, ok := get[T](ctx, c, fullKey); ok {
			return v, nil
		}
	default:
		c.logger.Warn("report_cache_error", "op", "lock", "key", fullKey, "error", err)
	}

	started := time.Now()
	v, cacheable, err := compute(ctx)
	if err != nil {
		return v, err
	}
	if elapsed := time.Since(started); elapsed >= c.opts.SlowAt {
		c.logger.Info("slow_report", "name", name, "key", key, "duration_ms", elapsed.Milliseconds())
	}
	if cacheable {
		set(ctx, c, fullKey, v)
	}
	return v, nil
}

func get[T any](ctx context.Context, c *ReportCache, key string) (T, bool) {
	var v T
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("report_cache_error", "op", "get", "key", key, "error", err)
		}
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.Warn("report_cache_error", "op", "decode", "key", key, "error", err)
		return v, false
	}
	return v, true
}

func set(ctx context.Context, c *ReportCache, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("report_cache_error", "op", "encode", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.opts.TTL).Err(); err != nil {
		c.logger.Warn("report_cache_error", "op", "set", "key", key, "error", err)
	}
}
