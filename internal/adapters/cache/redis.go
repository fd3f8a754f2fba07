package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/okian/swatch/internal/domain/analysis"
	"github.com/okian/swatch/pkg/logger"
	"github.com/okian/swatch/pkg/metrics"
)

// RedisClient is the subset of *redis.Client the cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Redis is a Cache shared between replicas.
type Redis struct {
	client  RedisClient
	prefix  string
	ttl     time.Duration
	log     logger.Logger
	metrics *metrics.Manager
}

// RedisOption configures a Redis cache.
type RedisOption func(*Redis)

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(p string) RedisOption {
	return func(r *Redis) {
		r.prefix = p
	}
}

// WithRedisTTL sets the entry expiration. Zero means no expiration.
func WithRedisTTL(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d >= 0 {
			r.ttl = d
		}
	}
}

// WithRedisMetrics records hits and misses on m.
func WithRedisMetrics(m *metrics.Manager) RedisOption {
	return func(r *Redis) {
		r.metrics = m
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

// NewRedis wraps client.
func NewRedis(client RedisClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client:  client,
		prefix:  "swatch:",
		ttl:     24 * time.Hour,
		log:     logger.Get().Named("cache"),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Backend implements Cache.
func (r *Redis) Backend() string { return "redis" }

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string) (analysis.Classification, bool) {
	var c analysis.Classification
	hit := false
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		r.log.Warn(ctx, "failed to read cache", logger.Error(err))
	default:
		if err := json.Unmarshal(raw, &c); err != nil {
			r.log.Warn(ctx, "dropping undecodable cache entry", logger.Error(err))
			c = analysis.Classification{}
		} else {
			hit = true
		}
	}
	if r.metrics != nil {
		r.metrics.RecordCache(r.Backend(), hit)
	}
	return c, hit
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key string, c analysis.Classification) {
	raw, err := json.Marshal(c)
	if err != nil {
		r.log.Warn(ctx, "failed to encode cache entry", logger.Error(err))
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		r.log.Warn(ctx, "failed to write cache", logger.Error(err))
	}
}
