package dialog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Readings stay valid for a calendar day; the TTL adds slack for timezones.
const readingTTL = 26 * time.Hour

// Cache keeps generated daily readings in Redis so repeated requests for the
// same (sign, date) pair do not regenerate content. A nil *Cache is valid and
// caches nothing.
type Cache struct {
	rdb *redis.Client
}

// NewCache connects to Redis when a URL is configured. An empty URL disables
// caching and returns nil.
func NewCache(redisURL string) (*Cache, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Cache{rdb: redis.NewClient(opts)}, nil
}

func readingKey(sign, date string) string {
	return fmt.Sprintf("reading:%s:%s", sign, date)
}

// Reading returns a cached reading and whether one was found. Redis errors
// degrade to a cache miss.
func (c *Cache) Reading(ctx context.Context, sign, date string) (string, bool) {
	if c == nil || c.rdb == nil {
		return "", false
	}
	v, err := c.rdb.Get(ctx, readingKey(sign, date)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("reading cache get failed: %v", err)
		}
		return "", false
	}
	return v, true
}

// StoreReading caches a generated reading. Failures are ignored: the cache is
// an optimization, not a source of truth.
func (c *Cache) StoreReading(ctx context.Context, sign, date, text string) {
	if c == nil || c.rdb == nil {
		return
	}
	_ = c.rdb.Set(ctx, readingKey(sign, date), text, readingTTL).Err()
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
