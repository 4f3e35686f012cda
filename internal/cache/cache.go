// Package cache keeps public product listings in Redis. Entries are keyed by
// a catalog version; bumping the version on any catalog write orphans every
// cached page at once and lets the TTL reclaim them.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/domain"
	"storefront/internal/metrics"
)

const versionKey = "storefront:products:version"

// Version is the catalog generation a lookup observed. A page loaded after a
// miss must be stored under the Version that miss returned, so a write that
// lands in between leaves the page orphaned instead of current.
type Version int64

// NoVersion marks a lookup that could not read the generation; Set ignores it.
const NoVersion Version = -1

// ProductPages caches product listing pages.
type ProductPages interface {
	Get(ctx context.Context, query string) (*domain.Page[domain.Product], Version, bool)
	Set(ctx context.Context, query string, ver Version, page domain.Page[domain.Product])
	Invalidate(ctx context.Context) error
}

// Connect dials Redis and verifies it with a ping.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return rdb, nil
}

type redisPages struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// NewRedis returns a ProductPages backed by rdb. Redis failures degrade to
// cache misses and are logged.
func NewRedis(rdb *redis.Client, ttl time.Duration, logger *log.Logger) ProductPages {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &redisPages{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *redisPages) version(ctx context.Context) (Version, error) {
	ver, err := c.rdb.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return NoVersion, err
	}
	return Version(ver), nil
}

func pageKey(ver Version, query string) string {
	return fmt.Sprintf("storefront:products:v%d:%s", ver, query)
}

func (c *redisPages) Get(ctx context.Context, query string) (*domain.Page[domain.Product], Version, bool) {
	ver, err := c.version(ctx)
	if err != nil {
		c.logger.Printf("cache: version lookup error=%v", err)
		return nil, NoVersion, false
	}
	key := pageKey(ver, query)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Printf("cache: get key=%s error=%v", key, err)
		}
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return nil, ver, false
	}
	var page domain.Page[domain.Product]
	if err := json.Unmarshal(raw, &page); err != nil {
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return nil, ver, false
	}
	metrics.CacheRequests.WithLabelValues("hit").Inc()
	return &page, ver, true
}

// Set stores page under ver. A ver older than the current generation is
// never read again, so the entry just waits for its TTL.
func (c *redisPages) Set(ctx context.Context, query string, ver Version, page domain.Page[domain.Product]) {
	if ver == NoVersion {
		return
	}
	key := pageKey(ver, query)
	data, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Printf("cache: set key=%s error=%v", key, err)
	}
}

func (c *redisPages) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, versionKey).Err()
}

type noopPages struct{}

// NewNoop returns a ProductPages that never hits.
func NewNoop() ProductPages { return noopPages{} }

func (noopPages) Get(context.Context, string) (*domain.Page[domain.Product], Version, bool) {
	return nil, NoVersion, false
}
func (noopPages) Set(context.Context, string, Version, domain.Page[domain.Product]) {}
func (noopPages) Invalidate(context.Context) error                                  { return nil }

// QueryKey renders the cache key suffix for a listing request.
func QueryKey(kind string, filter domain.ProductFilter, page domain.PageRequest) string {
	return fmt.Sprintf("%s:kw=%s:cat=%d:p=%d:s=%d:by=%s:%s",
		kind, filter.Keyword, filter.CategoryID, page.Number, page.Size, page.SortBy, page.SortOrder)
}
