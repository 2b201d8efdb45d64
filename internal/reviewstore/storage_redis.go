package reviewstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps items as plain Redis string keys under Prefix.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

func (r *RedisStorage) key(k string) string {
	return r.prefix + k
}

func (r *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisStorage) SetItem(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return mapRedisError(err)
	}
	return nil
}

func (r *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Redis answers writes over maxmemory with "OOM command not allowed ...".
func mapRedisError(err error) error {
	var rerr redis.Error
	if errors.As(err, &rerr) && strings.HasPrefix(rerr.Error(), "OOM") {
		return fmt.Errorf("%w: %v", ErrPersistenceFull, err)
	}
	return err
}
