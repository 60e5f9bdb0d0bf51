package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"joyeria_admin/internal/cache"
	"joyeria_admin/internal/models"
)

const (
	ProductListCacheKey = "admin:products:all"
	ProductListCacheTTL = 10 * time.Minute
)

// ListCache garde la dernière liste produits lue sur l'API.
// Un client nil désactive le cache.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	if ttl <= 0 {
		ttl = ProductListCacheTTL
	}
	return &ListCache{client: client, ttl: ttl}
}

func (c *ListCache) Get(ctx context.Context) ([]models.Product, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	var products []models.Product
	ok, err := cache.GetJSON(ctx, c.client, ProductListCacheKey, &products)
	if err != nil {
		slog.WarnContext(ctx, "lecture du cache produits", slog.String("error", err.Error()))
		return nil, false
	}
	return products, ok
}

func (c *ListCache) Set(ctx context.Context, products []models.Product) {
	if c == nil || c.client == nil {
		return
	}
	if err := cache.SetJSON(ctx, c.client, ProductListCacheKey, products, c.ttl); err != nil {
		slog.WarnContext(ctx, "écriture du cache produits", slog.String("error", err.Error()))
	}
}

// Invalidate est appelé après chaque création, mise à jour ou suppression
func (c *ListCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, ProductListCacheKey).Err(); err != nil {
		slog.WarnContext(ctx, "invalidation du cache produits", slog.String("error", err.Error()))
	}
}
