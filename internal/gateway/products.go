package gateway

import (
	"context"
	"net/http"
	"net/url"

	"joyeria_admin/internal/models"
)

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	r := request{op: "list_products", method: http.MethodGet, path: "/api/products"}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListFeaturedProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	r := request{op: "list_featured_products", method: http.MethodGet, path: "/api/products/featured"}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var out models.Product
	r := request{op: "get_product", method: http.MethodGet, path: "/api/products/" + url.PathEscape(id)}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, p ProductPayload) (*models.Product, error) {
	return c.sendProduct(ctx, "create_product", http.MethodPost, "/api/products", p)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, p ProductPayload) (*models.Product, error) {
	return c.sendProduct(ctx, "update_product", http.MethodPut, "/api/products/"+url.PathEscape(id), p)
}

func (c *Client) sendProduct(ctx context.Context, op, method, path string, p ProductPayload) (*models.Product, error) {
	body, contentType, err := p.Encode()
	if err != nil {
		return nil, transportError(op, err)
	}
	var out models.Product
	r := request{op: op, method: method, path: path, body: body, contentType: contentType}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	r := request{op: "delete_product", method: http.MethodDelete, path: "/api/products/" + url.PathEscape(id)}
	return c.do(ctx, r, nil)
}
