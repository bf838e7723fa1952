package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dealershipai/clarity/pkg/config"
)

// Redis keeps context entries in a Redis list, newest first.
type Redis struct {
	rdb      *redis.Client
	key      string
	maxItems int64
	ttl      time.Duration
	logger   *zap.Logger
}

// RedisOption configures a Redis cache.
type RedisOption func(*Redis)

// WithKey sets the list key.
func WithKey(key string) RedisOption {
	return func(r *Redis) {
		if key != "" {
			r.key = key
		}
	}
}

// WithMaxItems bounds the list length.
func WithMaxItems(max int) RedisOption {
	return func(r *Redis) {
		if max > 0 {
			r.maxItems = int64(max)
		}
	}
}

// WithTTL expires the whole list after d without writes.
func WithTTL(d time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = d
	}
}

// WithRedisLogger sets the logger for skipped entries.
func WithRedisLogger(logger *zap.Logger) RedisOption {
	return func(r *Redis) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		rdb:      rdb,
		key:      "clarity:context",
		maxItems: 1000,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, cfg config.RedisConfig, opts ...RedisOption) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedis(rdb, append([]RedisOption{WithKey(cfg.Key)}, opts...)...), nil
}

// Lookup scans the stored entries and returns up to limit relevant ones.
func (r *Redis) Lookup(ctx context.Context, query string, limit int) ([]Entry, error) {
	raw, err := r.rdb.LRange(ctx, r.key, 0, r.maxItems-1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", r.key, err)
	}

	candidates := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			r.logger.Debug("skipping undecodable context entry", zap.String("key", r.key), zap.Error(err))
			continue
		}
		candidates = append(candidates, e)
	}
	return rank(candidates, query, limit), nil
}

// Store pushes an entry and trims the list to capacity.
func (r *Redis) Store(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.Relevance = 0

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.key, data)
		pipe.LTrim(ctx, r.key, 0, r.maxItems-1)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store context entry: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
