// Package redis provides the Redis-backed implementation of the counter
// store, for counting shared across processes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/TheDhejavu/ratelimiter-go/internal/core/domain"
	"github.com/TheDhejavu/ratelimiter-go/internal/core/ports"
)

const defaultKeyPrefix = "ratelimit:"

// Storage counts requests in Redis. Every client failure surfaces as
// domain.ErrStoreUnavailable so callers never mistake "unreachable" for
// "count is zero".
type Storage struct {
	client *redis.Client
	prefix string
	keyTTL time.Duration
}

var _ ports.CounterStore = (*Storage)(nil)

type Config struct {
	Addr     string
	Password string
	DB       int

	// KeyPrefix namespaces all counter keys. Defaults to "ratelimit:".
	KeyPrefix string

	// KeyTTL bounds how long an idle bucket key survives. Zero means keys
	// never expire. When set, it must comfortably exceed the largest
	// window in use (at least twice it): a key that expires while its
	// bucket is still current or previous reads back as zero and resets
	// the budget mid-window. Buckets are addressed by index, so an
	// expired key is only ever absent, never another bucket's count.
	KeyTTL time.Duration
}

func New(cfg Config) (*Storage, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	return &Storage{client: client, prefix: prefix, keyTTL: cfg.KeyTTL}, nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) IncrementAndGet(ctx context.Context, key domain.BucketKey) (uint64, error) {
	redisKey := s.bucketKey(key)

	pipe := s.client.TxPipeline()
	counter := pipe.Incr(ctx, redisKey)
	if s.keyTTL > 0 {
		pipe.Expire(ctx, redisKey, s.keyTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: increment %s: %v", domain.ErrStoreUnavailable, redisKey, err)
	}

	return uint64(counter.Val()), nil
}

func (s *Storage) Get(ctx context.Context, key domain.BucketKey) (uint64, error) {
	redisKey := s.bucketKey(key)

	value, err := s.client.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: get %s: %v", domain.ErrStoreUnavailable, redisKey, err)
	}

	count, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unexpected counter value %q at %s: %v", domain.ErrStoreUnavailable, value, redisKey, err)
	}
	return count, nil
}

func (s *Storage) bucketKey(key domain.BucketKey) string {
	return fmt.Sprintf("%s%s:%s:%d", s.prefix, key.SubjectID, key.LimitType, key.Bucket)
}
