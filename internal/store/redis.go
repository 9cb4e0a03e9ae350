package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSlotKey is the fixed name of the durable key-value slot holding
// the serialized event collection.
const DefaultSlotKey = "attendance:events"

// Redis wraps redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// RedisBlob stores the serialized event collection under one key.
type RedisBlob struct {
	client *redis.Client
	key    string
}

// NewRedisBlob creates a blob bound to key, falling back to DefaultSlotKey.
func NewRedisBlob(client *redis.Client, key string) *RedisBlob {
	if key == "" {
		key = DefaultSlotKey
	}
	return &RedisBlob{client: client, key: key}
}

// Load returns the stored bytes, nil when the key does not exist.
func (b *RedisBlob) Load(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save rewrites the key in full, no expiry.
func (b *RedisBlob) Save(ctx context.Context, data []byte) error {
	return b.client.Set(ctx, b.key, data, 0).Err()
}
