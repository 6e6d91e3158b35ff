package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps compiled entries in Redis so several processes can share
// one cache.
type RedisStore struct {
	client *redis.Client
	config Config
}

// NewRedisStore connects to the server named by url (redis://host:port/db)
// and verifies the connection.
func NewRedisStore(url string, config Config) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return NewRedisStoreWithClient(client, config), nil
}

// NewRedisStoreWithClient creates a store with an existing client
func NewRedisStoreWithClient(client *redis.Client, config Config) *RedisStore {
	return &RedisStore{
		client: client,
		config: config,
	}
}

// Get retrieves an entry
func (r *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	value, err := r.client.Get(ctx, r.config.Prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss{Key: key}
		}
		return nil, err
	}

	var e Entry
	if err := json.Unmarshal(value, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Set stores an entry for the configured TTL
func (r *RedisStore) Set(ctx context.Context, key string, e *Entry) error {
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.config.Prefix+key, value, r.config.TTL).Err()
}

// Delete removes an entry
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.config.Prefix+key).Err()
}

// Clear removes all entries under the prefix
func (r *RedisStore) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.config.Prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
