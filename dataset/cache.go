package dataset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/pierrec/lz4"
	"github.com/redis/go-redis/v9"
)

// Cache stores raw dataset payloads by location.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// DefaultCachePrefix namespaces dataset keys in a shared redis.
const DefaultCachePrefix = "geodrill:dataset:"

// RedisCache keeps lz4-compressed payloads in redis.
type RedisCache struct {
	Client *redis.Client
	Prefix string
}

// OpenRedis connects to addr. It returns nil when addr is empty.
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// NewRedisCache wraps client. A nil client yields a nil cache, which
// misses every Get and drops every Set.
func NewRedisCache(client *redis.Client) *RedisCache {
	if client == nil {
		return nil
	}
	return &RedisCache{Client: client, Prefix: DefaultCachePrefix}
}

// Get returns the decompressed payload stored under key. A missing key is
// a miss, not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.Client == nil {
		return nil, false, nil
	}
	raw, err := c.Client.Get(ctx, c.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	data, err := decompressLZ4(raw)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data under key, lz4-compressed, expiring after ttl. Zero ttl
// keeps it until evicted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if c == nil || c.Client == nil {
		return nil
	}
	packed, err := compressLZ4(data)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, c.Prefix+key, packed, ttl).Err()
}

func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lz4.NewReader(bytes.NewReader(data))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
