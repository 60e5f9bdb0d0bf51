package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"joyeria_admin/internal/metrics"
	"joyeria_admin/internal/models"
)

type OrderQuery struct {
	Page   int
	Limit  int
	Status models.OrderStatus // vide = toutes
}

// ListOrders accepte les deux formes de réponse du serveur :
// {"orders": [...], "totalPages": n} (filtré et paginé côté serveur)
// ou un tableau nu (collection complète, Complete = true).
func (c *Client) ListOrders(ctx context.Context, q OrderQuery) (page *models.OrderPage, err error) {
	const op = "list_orders"
	start := time.Now()
	defer func() { metrics.ObserveGatewayCall(op, start, err) }()

	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("status", string(q.Status))

	raw, err := c.send(ctx, request{op: op, method: http.MethodGet, path: "/api/orders?" + params.Encode()})
	if err != nil {
		return nil, err
	}
	page, err = decodeOrderPage(raw)
	if err != nil {
		return nil, transportError(op, err)
	}
	return page, nil
}

func decodeOrderPage(raw []byte) (*models.OrderPage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return &models.OrderPage{TotalPages: 1, Complete: true}, nil
	}
	if trimmed[0] == '[' {
		var orders []models.Order
		if err := json.Unmarshal(trimmed, &orders); err != nil {
			return nil, fmt.Errorf("décodage commandes: %w", err)
		}
		return &models.OrderPage{Orders: orders, TotalPages: 1, Complete: true}, nil
	}
	var page models.OrderPage
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("décodage commandes: %w", err)
	}
	if page.TotalPages < 1 {
		page.TotalPages = 1
	}
	return &page, nil
}

func (c *Client) GetOrderStats(ctx context.Context) (*models.OrderStats, error) {
	var out models.OrderStats
	r := request{op: "order_stats", method: http.MethodGet, path: "/api/orders/stats"}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	r, err := c.newJSONRequest("update_order_status", http.MethodPut, "/api/orders/"+url.PathEscape(id),
		map[string]models.OrderStatus{"status": status})
	if err != nil {
		return nil, err
	}
	var out models.Order
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
