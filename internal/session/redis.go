package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores entries as plain Redis strings under
// "securefiles:<profile>:<key>".
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV connects to Redis and verifies the connection.
func NewRedisKV(ctx context.Context, addr, password string, db int, profile string) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewRedisKVFromClient(client, profile), nil
}

func NewRedisKVFromClient(client *redis.Client, profile string) *RedisKV {
	return &RedisKV{client: client, prefix: redisPrefix(profile)}
}

func redisPrefix(profile string) string {
	return "securefiles:" + profile + ":"
}

func (k *RedisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := k.client.Get(ctx, k.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	return value, err
}

func (k *RedisKV) SetAll(ctx context.Context, values map[string]string) error {
	_, err := k.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range values {
			pipe.Set(ctx, k.prefix+key, value, 0)
		}
		return nil
	})
	return err
}

func (k *RedisKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = k.prefix + key
	}
	return k.client.Del(ctx, full...).Err()
}

func (k *RedisKV) Close() error {
	return k.client.Close()
}
