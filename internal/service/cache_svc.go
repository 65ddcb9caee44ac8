package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs. Stats are cheap to recompute, so the TTL stays short and
// staleness after expiry sweeps is bounded by it.
const (
	ReportCacheTTL = 2 * time.Minute
	StatsCacheTTL  = time.Minute
)

// CacheService provides a Redis cache-aside layer for report lookups and
// product statistics.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or the
// connection fails, it returns a CacheService with a nil client (cache
// operations become no-ops).
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Println("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, caching disabled: %v", redisURL, err)
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, caching disabled: %v", err)
		return &CacheService{}
	}

	log.Println("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetReport retrieves a cached report payload. Returns nil if not cached or
// the cache is disabled.
func (c *CacheService) GetReport(ctx context.Context, reportID string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, reportKey(reportID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetReport stores a report payload in cache.
func (c *CacheService) SetReport(ctx context.Context, reportID string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, reportKey(reportID), b, ReportCacheTTL).Err()
}

// InvalidateReport removes a report from cache (called after disposition
// changes).
func (c *CacheService) InvalidateReport(ctx context.Context, reportID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, reportKey(reportID)).Err()
}

// GetStats retrieves cached product statistics. Returns nil if not cached.
func (c *CacheService) GetStats(ctx context.Context, productID, areaID string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, statsKey(productID, areaID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetStats stores product statistics in cache.
func (c *CacheService) SetStats(ctx context.Context, productID, areaID string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, statsKey(productID, areaID), b, StatsCacheTTL).Err()
}

// InvalidateStats removes the all-areas stats entry for a product.
// Area-scoped entries age out on their short TTL.
func (c *CacheService) InvalidateStats(ctx context.Context, productID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, statsKey(productID, "")).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func reportKey(reportID string) string {
	return fmt.Sprintf("report:%s", reportID)
}

func statsKey(productID, areaID string) string {
	if areaID == "" {
		return fmt.Sprintf("stats:%s", productID)
	}
	return fmt.Sprintf("stats:%s:%s", productID, areaID)
}
