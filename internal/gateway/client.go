// Package gateway est le client de l'API REST de la boutique (produits, commandes, auth).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"joyeria_admin/internal/metrics"
)

// TokenSource fournit le jeton bearer courant ; une chaîne vide = pas d'en-tête Authorization
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithTokens retourne une copie du client qui s'authentifie avec ts
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// WithHTTPClient remplace le transport (tests)
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.http = hc
	return &cp
}

type request struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
}

func (c *Client) newJSONRequest(op, method, path string, payload any) (request, error) {
	req := request{op: op, method: method, path: path}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return req, fmt.Errorf("%s: encodage JSON: %w", op, err)
		}
		req.body = bytes.NewReader(data)
		req.contentType = "application/json"
	}
	return req, nil
}

// do exécute la requête et décode la réponse dans out (si non nil).
// Aucune nouvelle tentative : toute erreur remonte telle quelle.
func (c *Client) do(ctx context.Context, r request, out any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveGatewayCall(r.op, start, err) }()

	raw, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return transportError(r.op, fmt.Errorf("décodage réponse: %w", err))
	}
	return nil
}

func (c *Client) send(ctx context.Context, r request) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return nil, transportError(r.op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		httpReq.Header.Set("Content-Type", r.contentType)
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(r.op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(r.op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(r.op, resp.StatusCode, raw)
	}
	return raw, nil
}
