package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address           string
	Password          string
	DB                int
	CompressThreshold int
}

// ErrEmptyAddress is returned when no Redis address is configured.
var ErrEmptyAddress = errors.New("store: redis address is required")

const redisPingTimeout = 5 * time.Second

// Redis is a Backend shared by every viewer process pointed at the same
// server. Keys expire with the session TTL.
type Redis struct {
	client *redis.Client
	codec  *codec
	closed atomic.Bool
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	c, err := newCodec(cfg.CompressThreshold)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Redis{client: client, codec: c}, nil
}

// Put stores p under key for ttl. A non-positive ttl never expires.
func (r *Redis) Put(ctx context.Context, key string, p Payload, ttl time.Duration) error {
	if r.closed.Load() {
		return ErrClosed
	}
	data, err := r.codec.encode(p)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Get fetches and decodes the entry for key.
func (r *Redis) Get(ctx context.Context, key string) (Payload, bool, error) {
	if r.closed.Load() {
		return Payload{}, false, ErrClosed
	}
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Payload{}, false, nil
	}
	if err != nil {
		return Payload{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	p, err := r.codec.decode(data)
	if err != nil {
		return Payload{}, false, err
	}
	return p, true, nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	r.codec.close()
	return r.client.Close()
}
