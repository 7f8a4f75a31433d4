// Package cache holds rendered pages for a short, fixed time.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postboard/app/config"
	"postboard/app/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KeyPrefix namespaces page entries inside a shared store.
const KeyPrefix = "pagecache:"

// ErrProcessLocal is returned by Connect for backends that live inside the
// serving process and cannot be reached from another one.
var ErrProcessLocal = errors.New("page cache is local to the serving process")

// PageCache stores rendered HTML bodies by key. Entries expire after the
// cache's TTL; there is no other eviction.
type PageCache interface {
	// Get returns the page and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, page []byte) error
	// Clear drops every page entry.
	Clear(ctx context.Context) error
	Close() error
}

// Option configures New.
type Option func(*options)

type options struct {
	logger        *zap.Logger
	allowFallback bool
}

// WithLogger sets the logger used while building the cache
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable redis falls back to in-memory badger.
func WithInMemoryFallback(allow bool) Option {
	return func(o *options) {
		o.allowFallback = allow
	}
}

// New builds the page cache selected by cfg.Backend.
func New(cfg config.CacheConfig, opts ...Option) (PageCache, error) {
	o := &options{logger: zap.NewNop(), allowFallback: true}
	for _, opt := range opts {
		opt(o)
	}

	var (
		c   PageCache
		err error
	)
	switch cfg.Backend {
	case "badger":
		c, err = NewBadgerCache(cfg.BadgerDir, cfg.TTL)
	case "redis":
		c, err = newRedisFromConfig(cfg)
		if err != nil && o.allowFallback {
			o.logger.Warn("Redis unavailable; using in-memory page cache", zap.Error(err))
			c, err = NewBadgerCache("", cfg.TTL)
		}
	case "none":
		c = NopCache{}
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return instrumented{c}, nil
}

// Connect opens the shared cache a running server uses, for out-of-process
// maintenance. Only redis is shared; an unreachable redis is an error.
func Connect(cfg config.CacheConfig, opts ...Option) (PageCache, error) {
	if cfg.Backend != "redis" {
		return nil, fmt.Errorf("%w: cache.backend %q entries expire after %s", ErrProcessLocal, cfg.Backend, cfg.TTL)
	}
	return New(cfg, append(opts, WithInMemoryFallback(false))...)
}

func newRedisFromConfig(cfg config.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisCache(client, cfg.TTL), nil
}

// instrumented counts hits and misses.
type instrumented struct {
	PageCache
}

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	page, ok, err := c.PageCache.Get(ctx, key)
	if err == nil {
		metrics.RecordCacheLookup(ok)
	}
	return page, ok, err
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }
func (NopCache) Set(ctx context.Context, key string, page []byte) error    { return nil }
func (NopCache) Clear(ctx context.Context) error                           { return nil }
func (NopCache) Close() error                                              { return nil }
