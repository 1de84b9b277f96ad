package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/metrics"
)

const defaultKeyPrefix = "techsync:"

// RedisOption configures a Redis cache.
type RedisOption func(*Redis)

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithRedisLogger sets the logger.
func WithRedisLogger(l logger.Logger) RedisOption {
	return func(r *Redis) {
		if l != nil {
			r.log = l
		}
	}
}

// Redis shares the project pool between service replicas. Redis errors
// degrade to a load from the store; they are never returned.
type Redis struct {
	client *redis.Client
	prefix string
	log    logger.Logger
	counters
}

// NewRedis connects to addr and pings it.
func NewRedis(ctx context.Context, addr, password string, db int, opts ...RedisOption) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return newRedis(client, opts...), nil
}

func newRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: defaultKeyPrefix,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Backend implements ProjectCache.
func (r *Redis) Backend() string { return BackendRedis }

// Get implements ProjectCache.
func (r *Redis) Get(ctx context.Context, key string, load Loader, ttl time.Duration) ([]model.ProjectCandidate, error) {
	full := r.key(key)

	raw, err := r.client.Get(ctx, full).Bytes()
	switch {
	case err == nil:
		pool, decErr := decodePool(raw)
		if decErr == nil {
			r.hits.Add(1)
			metrics.RecordCacheLookup(BackendRedis, true)
			return pool, nil
		}
		r.log.Warn(ctx, "discarding undecodable cache entry", logger.String("key", full), logger.Error(decErr))
	case !errors.Is(err, redis.Nil):
		r.log.Warn(ctx, "redis get failed, loading from store", logger.String("key", full), logger.Error(err))
	}
	r.misses.Add(1)
	metrics.RecordCacheLookup(BackendRedis, false)

	pool, err := load(ctx)
	r.loads.Add(1)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return pool, nil
	}

	payload, err := encodePool(pool)
	if err != nil {
		r.log.Warn(ctx, "cannot encode project pool", logger.Error(err))
		return pool, nil
	}
	if err := r.client.Set(ctx, full, payload, ttl).Err(); err != nil {
		r.log.Warn(ctx, "redis set failed", logger.String("key", full), logger.Error(err))
	}
	return pool, nil
}

// Invalidate implements ProjectCache.
func (r *Redis) Invalidate(ctx context.Context, key string) error {
	n, err := r.client.Del(ctx, r.key(key)).Result()
	if err != nil {
		return fmt.Errorf("redis del %s: %w", r.key(key), err)
	}
	r.evictions.Add(n)
	return nil
}

// Stats implements ProjectCache. Keys is not tracked for Redis.
func (r *Redis) Stats() Stats { return r.snapshot(BackendRedis, 0) }

// Close closes the client.
func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) key(k string) string { return r.prefix + k }

// encodePool and decodePool are the wire format of cached pools.
func encodePool(pool []model.ProjectCandidate) ([]byte, error) {
	if pool == nil {
		pool = []model.ProjectCandidate{}
	}
	return json.Marshal(pool)
}

func decodePool(raw []byte) ([]model.ProjectCandidate, error) {
	var pool []model.ProjectCandidate
	if err := json.Unmarshal(raw, &pool); err != nil {
		return nil, fmt.Errorf("decode project pool: %w", err)
	}
	if pool == nil {
		return nil, errors.New("decode project pool: null payload")
	}
	return pool, nil
}
