package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	topKeyPrefix = "catalog:top:" // cached ListTop pages: catalog:top:{limit}
	topTTL       = 30 * time.Second
)

// TopCache caches ListTop pages in Redis. Entries expire on a short
// TTL and are dropped eagerly whenever a publish lands, so the public
// listing never lags a publish by more than one fetch.
type TopCache struct {
	client *redis.Client
}

func NewTopCache(client *redis.Client) *TopCache {
	return &TopCache{client: client}
}

func (c *TopCache) key(limit int) string {
	return fmt.Sprintf("%s%d", topKeyPrefix, limit)
}

// Get returns the cached page for the given limit, or (nil, false)
// on miss. Redis errors degrade to a miss.
func (c *TopCache) Get(ctx context.Context, limit int) ([]Project, bool) {
	data, err := c.client.Get(ctx, c.key(limit)).Bytes()
	if err != nil {
		return nil, false
	}

	var out []Project
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}

// Set stores a page. Failures are ignored; the cache is advisory.
func (c *TopCache) Set(ctx context.Context, limit int, projects []Project) {
	data, err := json.Marshal(projects)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(limit), data, topTTL)
}

// Invalidate drops every cached page.
func (c *TopCache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, topKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
}
