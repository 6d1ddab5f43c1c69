package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"marketplace/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	keyProductsPrefix    = "products:"
	keyProductSearch     = keyProductsPrefix + "search:"
	keyListingGeneration = "listings:generation"
)

// ListingCache caches public listing searches in Redis. Every entry is
// stored under the generation current when its query started; InvalidateAll
// bumps the generation, so a result computed before a write can never be
// read back after it.
type ListingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewListingCache(rdb *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{rdb: rdb, ttl: ttl}
}

// Generation returns the current cache generation, 0 before the first write.
func (c *ListingCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, keyListingGeneration).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// GetSearch returns the cached result for filter, or nil on a miss.
func (c *ListingCache) GetSearch(ctx context.Context, gen int64, filter ListingFilter) ([]models.Product, error) {
	b, err := c.rdb.Get(ctx, searchKey(gen, filter)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []models.Product{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *ListingCache) SetSearch(ctx context.Context, gen int64, filter ListingFilter, list []models.Product) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, searchKey(gen, filter), b, c.ttl).Err()
}

// InvalidateAll moves to a new generation and removes every cached result.
func (c *ListingCache) InvalidateAll(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, keyListingGeneration).Err(); err != nil {
		return err
	}
	iter := c.rdb.Scan(ctx, 0, keyProductsPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// filterKey identifies a search independent of generation.
func filterKey(filter ListingFilter) string {
	category := filter.normalizedCategory()
	if category == "" {
		category = models.CategoryAll
	}
	return category + ":" + strings.ToLower(strings.TrimSpace(filter.Search))
}

func searchKey(gen int64, filter ListingFilter) string {
	return keyProductSearch + strconv.FormatInt(gen, 10) + ":" + filterKey(filter)
}
