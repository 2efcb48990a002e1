package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ChristianDiazS/miappventas-sub002/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// Cached decorates a Catalog with a redis read-through cache. The DB stays
// the source of truth; redis failures degrade to direct lookups. Invalidate
// must be called whenever stock or price of a SKU is mutated.
type Cached struct {
	Next  Catalog
	Redis *redis.Client
	TTL   time.Duration
}

func NewCached(next Catalog, rdb *redis.Client) *Cached {
	return &Cached{Next: next, Redis: rdb, TTL: redisx.TTLCatalogItem}
}

func (c *Cached) Lookup(ctx context.Context, sku string) (Item, error) {
	key := fmt.Sprintf(redisx.KeyCatalogItem, sku)
	if s, err := c.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		var it Item
		if err := json.Unmarshal([]byte(s), &it); err == nil {
			return it, nil
		}
	}

	it, err := c.Next.Lookup(ctx, sku)
	if err != nil {
		return Item{}, err
	}
	if b, err := json.Marshal(it); err == nil {
		if err := c.Redis.Set(ctx, key, b, c.TTL).Err(); err != nil {
			slog.Warn("catalog cache set failed", "sku", sku, "err", err)
		}
	}
	return it, nil
}

// Invalidate drops the cached entries for the given SKUs. Called after every
// stock mutation (reserve, restore) so readers never see a stale quantity
// past one round trip.
func (c *Cached) Invalidate(ctx context.Context, skus ...string) {
	for _, sku := range skus {
		if err := c.Redis.Del(ctx, fmt.Sprintf(redisx.KeyCatalogItem, sku)).Err(); err != nil {
			slog.Warn("catalog cache invalidate failed", "sku", sku, "err", err)
		}
	}
}
