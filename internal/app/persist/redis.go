package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
)

// RedisStorage keeps snapshots in Redis, namespaced by a key prefix so
// several deployments can share one instance.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage connects to addr and verifies the connection.
func NewRedisStorage(ctx context.Context, addr, password, prefix string) (*RedisStorage, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	if prefix == "" {
		prefix = "moringaconnect"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStorage{client: client, prefix: prefix}, nil
}

func (r *RedisStorage) key(key string) string {
	return r.prefix + ":" + key
}

// Load returns the stored value for key, or ErrNotFound.
func (r *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Save writes the value with no expiry; snapshots live until purged.
func (r *RedisStorage) Save(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

// Delete removes the given keys. Missing keys are not an error.
func (r *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = r.key(k)
	}
	return r.client.Del(ctx, namespaced...).Err()
}

// Close releases the underlying connection pool.
func (r *RedisStorage) Close() error { return r.client.Close() }
