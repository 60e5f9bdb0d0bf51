// Package orders branche le contrôleur de liste sur les commandes de l'API.
package orders

import (
	"context"

	"joyeria_admin/internal/apperr"
	"joyeria_admin/internal/gateway"
	"joyeria_admin/internal/listing"
	"joyeria_admin/internal/models"
)

const FilterStatus = "status"

// Schema : la recherche ne sert qu'en mode dégradé, quand le serveur renvoie toute la collection
var Schema = listing.Schema[models.Order]{
	ID: func(o models.Order) string { return o.ID },
	Search: []func(models.Order) string{
		func(o models.Order) string { return o.OrderNumber },
		func(o models.Order) string { return o.CustomerName },
		func(o models.Order) string { return o.Email },
	},
	Text: map[string]func(models.Order) string{
		FilterStatus: func(o models.Order) string { return string(o.Status) },
	},
}

type Gateway interface {
	ListOrders(ctx context.Context, q gateway.OrderQuery) (*models.OrderPage, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	GetOrderStats(ctx context.Context) (*models.OrderStats, error)
}

// Source pousse le filtre de statut et la pagination vers le serveur
type Source struct {
	gw Gateway
}

func NewSource(gw Gateway) *Source {
	return &Source{gw: gw}
}

func (s *Source) Fetch(ctx context.Context, q listing.Query) (listing.Result[models.Order], error) {
	oq := gateway.OrderQuery{Page: q.Page, Limit: q.PageSize}
	if c, ok := q.Active(FilterStatus); ok {
		oq.Status = models.OrderStatus(c.Exact)
	}

	page, err := s.gw.ListOrders(ctx, oq)
	if err != nil {
		return listing.Result[models.Order]{}, err
	}
	if page.Complete {
		return listing.Result[models.Order]{Items: page.Orders, Total: len(page.Orders), TotalPages: 1, Complete: true}, nil
	}

	total := -1
	if page.TotalPages <= 1 {
		total = len(page.Orders)
	}
	return listing.Result[models.Order]{Items: page.Orders, Total: total, TotalPages: page.TotalPages}, nil
}

type List struct {
	*listing.Controller[models.Order]
	gw Gateway
}

func NewList(gw Gateway, pageSize int) *List {
	return &List{
		Controller: listing.NewController("orders", Schema, listing.Source[models.Order](NewSource(gw)), pageSize),
		gw:         gw,
	}
}

// ChangeStatus affiche le nouveau statut tout de suite ; la ligne revient à l'ancien si l'API refuse.
// Une commande hors de la page affichée est modifiée directement puis la page est rechargée.
func (l *List) ChangeStatus(ctx context.Context, id string, status models.OrderStatus) error {
	if !status.Valid() {
		return apperr.InvalidErr("Statut de commande invalide", map[string]string{"status": "valeur inconnue"})
	}
	if !l.Contains(id) {
		if _, err := l.gw.UpdateOrderStatus(ctx, id, status); err != nil {
			return err
		}
		return l.Invalidate(ctx)
	}
	return l.Update(ctx, id,
		func(o *models.Order) { o.Status = status },
		func(ctx context.Context) error {
			_, err := l.gw.UpdateOrderStatus(ctx, id, status)
			return err
		},
	)
}

// Stats alimente le tableau de bord
func Stats(ctx context.Context, gw Gateway) (*models.OrderStats, error) {
	return gw.GetOrderStats(ctx)
}
