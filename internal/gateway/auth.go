package gateway

import (
	"context"
	"net/http"

	"joyeria_admin/internal/models"
)

// Login ne vérifie pas le rôle : c'est la session qui refuse les non-admins
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	r, err := c.newJSONRequest("login", http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var out models.LoginResponse
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
