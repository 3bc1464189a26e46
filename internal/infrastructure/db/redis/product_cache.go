package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/closetshop/closet-api/pkg/metrics"
	"github.com/closetshop/closet-api/internal/core/domain"
)

const defaultProductTTL = 10 * time.Minute

// ProductCache implements ports.ProductCache on Redis.
// Key format: product:<id>
//
// Redis errors are logged and treated as misses; the database stays the
// source of truth.
type ProductCache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    zerolog.Logger
}

// NewProductCache wraps client. If ttl <= 0, defaultProductTTL is used.
func NewProductCache(client redis.Cmdable, ttl time.Duration, log zerolog.Logger) *ProductCache {
	if ttl <= 0 {
		ttl = defaultProductTTL
	}
	return &ProductCache{client: client, ttl: ttl, log: log}
}

func (c *ProductCache) Get(ctx context.Context, id string) (*domain.Product, bool) {
	raw, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("product_id", id).Msg("product cache read failed")
		}
		metrics.ProductCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var p domain.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		c.log.Warn().Err(err).Str("product_id", id).Msg("discarding corrupt product cache entry")
		c.Invalidate(ctx, id)
		metrics.ProductCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.ProductCacheTotal.WithLabelValues("hit").Inc()
	return &p, true
}

func (c *ProductCache) Set(ctx context.Context, p *domain.Product) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, productKey(p.ID), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("product_id", p.ID).Msg("product cache write failed")
	}
}

func (c *ProductCache) Invalidate(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Strs("product_ids", ids).Msg("product cache invalidation failed")
	}
}

func productKey(id string) string {
	return "product:" + id
}
