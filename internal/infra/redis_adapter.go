// Package infra provides concrete infrastructure adapters for Redis.
//
// GoRedisAdapter wraps go-redis v9 and implements ingest.RedisClient. When
// Redis is unreachable cmd/api falls back to the in-memory upload store.
package infra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// GoRedisAdapter wraps go-redis v9 to implement the minimal interface
// expected by ingest.RedisStore.
type GoRedisAdapter struct {
	rdb redis.UniversalClient
}

// NewGoRedisAdapter connects to Redis and pings it. Returns the adapter and
// any connection error (caller decides whether to fall back to in-memory).
func NewGoRedisAdapter(ctx context.Context, addr, password string, db int) (*GoRedisAdapter, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     20,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed (%s): %w", addr, err)
	}

	slog.Info("Redis connected", "addr", addr, "db", db)
	return &GoRedisAdapter{rdb: rdb}, nil
}

// NewGoRedisAdapterFromClient wraps an existing client without pinging.
func NewGoRedisAdapterFromClient(rdb redis.UniversalClient) *GoRedisAdapter {
	return &GoRedisAdapter{rdb: rdb}
}

// Close shuts down the underlying redis client.
func (a *GoRedisAdapter) Close() error {
	return a.rdb.Close()
}

// Ping reports whether Redis answers, for health checks.
func (a *GoRedisAdapter) Ping(ctx context.Context) error {
	return a.rdb.Ping(ctx).Err()
}

// =============================================================================
// ingest.RedisClient implementation
// =============================================================================

func (a *GoRedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := a.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// setIndexedScript runs SET, SADD and the conditional RPUSH as one script,
// so no client ever sees the record without its index entry or the reverse.
var setIndexedScript = redis.NewScript(`
redis.call('SET', KEYS[1], ARGV[1])
if redis.call('SADD', KEYS[2], ARGV[2]) == 1 then
	redis.call('RPUSH', KEYS[3], ARGV[2])
end
return 1
`)

func (a *GoRedisAdapter) SetIndexed(ctx context.Context, key string, value []byte, setKey, listKey, member string) error {
	return setIndexedScript.Run(ctx, a.rdb, []string{key, setKey, listKey}, value, member).Err()
}

func (a *GoRedisAdapter) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return a.rdb.LRange(ctx, key, start, stop).Result()
}
