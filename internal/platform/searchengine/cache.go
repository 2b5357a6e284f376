package searchengine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// cacheTTL is how long a warmed search result stays valid before the next
// SearchLocationsByText task re-fetches it.
const cacheTTL = 24 * time.Hour

const keyPrefix = "searchcache:"

// Cache is the text-search result cache SearchLocationsByText writes into
// and the search-by-text HTTP route reads from.
type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func key(text string) string {
	return keyPrefix + text
}

// Set stores raw under text, refreshing the TTL.
func (c *Cache) Set(ctx context.Context, text string, raw json.RawMessage) error {
	if err := c.rdb.Set(ctx, key(text), []byte(raw), cacheTTL).Err(); err != nil {
		return apperr.Unexpected("set search cache entry", err)
	}
	return nil
}

// Get returns the cached result for text, or found=false on a miss.
func (c *Cache) Get(ctx context.Context, text string) (json.RawMessage, bool, error) {
	raw, err := c.rdb.Get(ctx, key(text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperr.Unexpected("get search cache entry", err)
	}
	return raw, true, nil
}
