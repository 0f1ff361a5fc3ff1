package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisNamespace     = "merchconfig"
	redisPingTimeout   = 5 * time.Second
	redisDialTimeout   = 3 * time.Second
	redisCommandTimeout = 2 * time.Second
)

// RedisProvider shares the serialized catalog between server replicas, so a
// price edited through one replica's admin API is dropped for all of them.
type RedisProvider struct {
	client    *redis.Client
	namespace string
}

// NewRedisProvider connects to url (redis:// or rediss://) and verifies the
// connection before returning.
func NewRedisProvider(url string) (*RedisProvider, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis connection string: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = redisDialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = redisCommandTimeout
	}

	p := &RedisProvider{client: redis.NewClient(opts), namespace: redisNamespace}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := p.client.Ping(ctx).Err(); err != nil {
		_ = p.client.Close() //nolint
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return p, nil
}

func (p *RedisProvider) Get(ctx context.Context, key string) (string, error) {
	value, err := p.client.Get(ctx, p.key(key)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value; a non-positive ttl never expires.
func (p *RedisProvider) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := p.client.Set(ctx, p.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (p *RedisProvider) Delete(ctx context.Context, key string) error {
	if err := p.client.Del(ctx, p.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (p *RedisProvider) Close() error {
	return p.client.Close()
}

func (p *RedisProvider) key(key string) string {
	return p.namespace + ":" + key
}
