package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// RedisClient is the subset of Redis commands RedisStore needs. The concrete
// go-redis client lives in internal/infra and is injected from cmd/api.
type RedisClient interface {
	// Get returns nil, nil when key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	// SetIndexed stores value at key, adds member to setKey and, only when
	// member was not already in setKey, appends it to listKey. All three
	// writes happen or none do.
	SetIndexed(ctx context.Context, key string, value []byte, setKey, listKey, member string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// RedisStore shares uploads between processes through Redis.
//
// Layout under keyPrefix:
//
//	upload:<category>  JSON-encoded Record
//	categories         set of known categories
//	uploads            list of categories in first-upload order
type RedisStore struct {
	client    RedisClient
	keyPrefix string
}

func NewRedisStore(client RedisClient, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "retailpilot:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (rs *RedisStore) recordKey(category string) string {
	return rs.keyPrefix + "upload:" + category
}

func (rs *RedisStore) Get(ctx context.Context, category string) (*Record, error) {
	data, err := rs.client.Get(ctx, rs.recordKey(category))
	if err != nil {
		return nil, fmt.Errorf("redis GET upload: %w", err)
	}
	if data == nil {
		return nil, ErrNotFound
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal upload %s: %w", category, err)
	}
	return &rec, nil
}

func (rs *RedisStore) Put(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal upload: %w", err)
	}
	err = rs.client.SetIndexed(ctx, rs.recordKey(rec.Category), data,
		rs.keyPrefix+"categories", rs.keyPrefix+"uploads", rec.Category)
	if err != nil {
		return fmt.Errorf("redis save upload: %w", err)
	}
	return nil
}

func (rs *RedisStore) List(ctx context.Context) ([]*Record, error) {
	categories, err := rs.client.LRange(ctx, rs.keyPrefix+"uploads", 0, -1)
	if err != nil {
		return nil, fmt.Errorf("redis LRANGE uploads: %w", err)
	}

	out := make([]*Record, 0, len(categories))
	for _, c := range categories {
		rec, err := rs.Get(ctx, c)
		if errors.Is(err, ErrNotFound) {
			// index entry outlived its record (e.g. manual key deletion)
			slog.Warn("[RedisStore] Dangling category in upload index", "category", c)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
