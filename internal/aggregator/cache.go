package aggregator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobboard_backend/internal/logger"
)

// CachedSearcher caches successful search results in redis. Errors are
// never cached, and a redis outage degrades to direct upstream calls.
type CachedSearcher struct {
	inner Searcher
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedSearcher(inner Searcher, rdb *redis.Client, ttl time.Duration) *CachedSearcher {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedSearcher{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *CachedSearcher) Search(ctx context.Context, params SearchParams) ([]Listing, error) {
	if c.rdb == nil {
		return c.inner.Search(ctx, params)
	}

	log := logger.GetLogger()
	key := cacheKey(params)

	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var listings []Listing
		if err := json.Unmarshal(data, &listings); err == nil {
			return listings, nil
		}
		// Corrupt entry, fall through and overwrite it.
	} else if err != redis.Nil {
		log.Warn("aggregator cache read failed", "error", err)
	}

	listings, err := c.inner.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(listings); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			log.Warn("aggregator cache write failed", "error", err)
		}
	}

	return listings, nil
}

func cacheKey(params SearchParams) string {
	page := params.Page
	if page <= 0 {
		page = 1
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d",
		params.Query, params.Location, params.ContractType, page)))
	return "aggregator:search:" + hex.EncodeToString(sum[:8])
}
