// Package catalog branche le contrôleur de liste sur les produits de l'API.
package catalog

import (
	"context"

	"joyeria_admin/internal/listing"
	"joyeria_admin/internal/models"
)

// Clés de filtre de la liste produits
const (
	FilterCategory = "category"
	FilterStatus   = "status"
	FilterPrice    = "price"
	FilterStock    = "stock"
)

// Schema : la recherche porte sur le nom ou le SKU
var Schema = listing.Schema[models.Product]{
	ID: func(p models.Product) string { return p.ID },
	Search: []func(models.Product) string{
		func(p models.Product) string { return p.Name },
		func(p models.Product) string { return p.SKU },
	},
	Text: map[string]func(models.Product) string{
		FilterCategory: func(p models.Product) string { return string(p.Category) },
		FilterStatus:   func(p models.Product) string { return string(p.Status) },
	},
	Number: map[string]func(models.Product) float64{
		FilterPrice: func(p models.Product) float64 { return p.Price.InexactFloat64() },
		FilterStock: func(p models.Product) float64 { return float64(p.Stock) },
	},
}

// Gateway est la partie de l'API distante utilisée par la liste produits
type Gateway interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Source lit la collection complète, via le cache si possible
type Source struct {
	gw    Gateway
	cache *ListCache
}

func NewSource(gw Gateway, cache *ListCache) *Source {
	return &Source{gw: gw, cache: cache}
}

func (s *Source) Fetch(ctx context.Context, _ listing.Query) (listing.Result[models.Product], error) {
	if cached, ok := s.cache.Get(ctx); ok {
		return listing.Result[models.Product]{Items: cached, Total: len(cached), TotalPages: 1, Complete: true}, nil
	}
	products, err := s.gw.ListProducts(ctx)
	if err != nil {
		return listing.Result[models.Product]{}, err
	}
	s.cache.Set(ctx, products)
	return listing.Result[models.Product]{Items: products, Total: len(products), TotalPages: 1, Complete: true}, nil
}

// List est la liste produits d'un espace de travail
type List struct {
	*listing.Controller[models.Product]
	gw    Gateway
	cache *ListCache
}

func NewList(gw Gateway, cache *ListCache, pageSize int) *List {
	return &List{
		Controller: listing.NewController("products", Schema, listing.Source[models.Product](NewSource(gw, cache)), pageSize),
		gw:         gw,
		cache:      cache,
	}
}

// Delete supprime un produit confirmé, vide le cache puis recharge la liste
func (l *List) Delete(ctx context.Context, id string, confirmed bool) error {
	return l.Remove(ctx, id, confirmed, func(ctx context.Context) error {
		if err := l.gw.DeleteProduct(ctx, id); err != nil {
			return err
		}
		l.cache.Invalidate(ctx)
		return nil
	})
}

// Refresh vide le cache puis recharge (après une soumission de l'éditeur)
func (l *List) Refresh(ctx context.Context) error {
	l.cache.Invalidate(ctx)
	return l.Invalidate(ctx)
}
