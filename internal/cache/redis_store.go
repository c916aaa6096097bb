package cache

import (
	"context"
	stderrors "errors"

	goredis "github.com/redis/go-redis/v9"

	"portfolio-api/pkg/redis"
)

var errQuotaExceeded = stderrors.New("cache storage quota exceeded")

// RedisStore keeps all entries of one cache inside a single Redis hash so
// the managers can enumerate entries for eviction decisions.
type RedisStore struct {
	client  *redis.Client
	hashKey string
}

// NewRedisStore creates a store backed by the Redis hash at hashKey.
func NewRedisStore(client *redis.Client, hashKey string) *RedisStore {
	return &RedisStore{client: client, hashKey: hashKey}
}

func (r *RedisStore) Load(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.HGet(ctx, r.hashKey, key)
	if err != nil {
		if err == goredis.Nil {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisStore) LoadAll(ctx context.Context) (map[string]string, error) {
	return r.client.HGetAll(ctx, r.hashKey)
}

func (r *RedisStore) Save(ctx context.Context, key, value string) error {
	return r.client.HSet(ctx, r.hashKey, key, value)
}

func (r *RedisStore) Delete(ctx context.Context, keys ...string) error {
	return r.client.HDel(ctx, r.hashKey, keys...)
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Delete(ctx, r.hashKey)
}
