package kv

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a Redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Redis stores values as plain Redis strings.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the server described by cfg and pings it.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return &Redis{client: client}, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get returns the value under key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, redisErr(err)
	}
	return data, true, nil
}

// Set stores data under key without expiry.
func (r *Redis) Set(ctx context.Context, key string, data []byte) error {
	return redisErr(r.client.Set(ctx, key, data, 0).Err())
}

// Delete removes key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return redisErr(r.client.Del(ctx, key).Err())
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// redisErr marks network failures as retryable.
func redisErr(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable(err)
	}
	return err
}

var _ Store = (*Redis)(nil)
