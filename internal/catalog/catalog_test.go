package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"joyeria_admin/internal/listing"
	"joyeria_admin/internal/models"
)

type fakeGateway struct {
	mu       sync.Mutex
	products []models.Product
	lists    int
	deleted  []string
}

func (f *fakeGateway) ListProducts(context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return append([]models.Product(nil), f.products...), nil
}

func (f *fakeGateway) DeleteProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	out := f.products[:0]
	for _, p := range f.products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	f.products = out
	return nil
}

func catalogFixture() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Anillo Oro", SKU: "AN-1", Price: decimal.NewFromInt(100), Stock: 5, Category: models.CategoryEngagementRings, Status: models.ProductActive},
		{ID: "2", Name: "Collar Perlas", SKU: "CO-1", Price: decimal.NewFromInt(320), Stock: 0, Category: models.CategoryNecklaces, Status: models.ProductFeatured},
		{ID: "3", Name: "Alianza", SKU: "AN-2", Price: decimal.NewFromInt(90), Stock: 12, Category: models.CategoryWeddingRings, Status: models.ProductActive},
	}
}

func newCache(t *testing.T) (*ListCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewListCache(client, time.Minute), mr
}

func TestSearchMatchesNameOrSKU(t *testing.T) {
	ctx := context.Background()
	l := NewList(&fakeGateway{products: catalogFixture()}, nil, 10)
	if err := l.Load(ctx); err != nil {
		t.Fatal(err)
	}

	_ = l.SetSearchTerm(ctx, "an-")
	if v := l.View(); v.Total != 2 {
		t.Fatalf("sku search total = %d", v.Total)
	}
	_ = l.SetSearchTerm(ctx, "perlas")
	if v := l.View(); v.Total != 1 || v.Rows[0].ID != "2" {
		t.Fatalf("name search = %+v", v.Rows)
	}
}

func TestFiltersCombine(t *testing.T) {
	ctx := context.Background()
	l := NewList(&fakeGateway{products: catalogFixture()}, nil, 10)
	_ = l.Load(ctx)

	lo := 1.0
	if err := l.SetFilter(ctx, FilterStock, listing.Range(&lo, nil)); err != nil {
		t.Fatal(err)
	}
	if err := l.SetFilter(ctx, FilterStatus, listing.Exact("active")); err != nil {
		t.Fatal(err)
	}
	hi := 95.0
	if err := l.SetFilter(ctx, FilterPrice, listing.Range(nil, &hi)); err != nil {
		t.Fatal(err)
	}
	v := l.View()
	if v.Total != 1 || v.Rows[0].ID != "3" {
		t.Fatalf("rows = %+v", v.Rows)
	}
}

func TestSourceUsesCache(t *testing.T) {
	ctx := context.Background()
	cache, mr := newCache(t)
	gw := &fakeGateway{products: catalogFixture()}

	first := NewList(gw, cache, 10)
	if err := first.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists(ProductListCacheKey) {
		t.Fatal("list should be cached after the first fetch")
	}

	second := NewList(gw, cache, 10)
	if err := second.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if gw.lists != 1 {
		t.Fatalf("second list should be served from cache, gateway calls = %d", gw.lists)
	}
	if second.View().Total != 3 {
		t.Fatalf("cached total = %d", second.View().Total)
	}
}

func TestDeleteInvalidatesCacheAndRefetches(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)
	gw := &fakeGateway{products: catalogFixture()}
	l := NewList(gw, cache, 10)
	_ = l.Load(ctx)

	if err := l.Delete(ctx, "2", true); err != nil {
		t.Fatal(err)
	}
	if len(gw.deleted) != 1 || gw.lists != 2 {
		t.Fatalf("deleted=%v lists=%d", gw.deleted, gw.lists)
	}
	for _, p := range l.View().Rows {
		if p.ID == "2" {
			t.Fatal("deleted product still listed")
		}
	}
}

func TestDeleteWithoutConfirmation(t *testing.T) {
	gw := &fakeGateway{products: catalogFixture()}
	l := NewList(gw, nil, 10)
	_ = l.Load(context.Background())
	if err := l.Delete(context.Background(), "1", false); err == nil {
		t.Fatal("expected confirmation error")
	}
	if len(gw.deleted) != 0 {
		t.Fatal("gateway must not be called without confirmation")
	}
}
