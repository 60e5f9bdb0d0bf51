package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"

	"joyeria_admin/internal/catalog"
	"joyeria_admin/internal/gateway"
	"joyeria_admin/internal/mockapi"
	"joyeria_admin/internal/session"
	"joyeria_admin/internal/workspace"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type harness struct {
	t      *testing.T
	srv    *httptest.Server
	api    *mockapi.Server
	client *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := mockapi.New()
	if err := api.Seed(); err != nil {
		t.Fatal(err)
	}
	apiSrv := httptest.NewServer(api.Handler())
	t.Cleanup(apiSrv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	reg := workspace.NewRegistry(
		gateway.New(apiSrv.URL, 5*time.Second),
		session.NewRedisStore(rdb, session.DefaultTTL),
		catalog.NewListCache(rdb, catalog.ProductListCacheTTL),
		10,
	)
	router := NewRouter(Deps{
		Registry: reg,
		Cookies:  sessions.NewCookieStore([]byte("test-session-secret-0123456789ab")),
		Redis:    rdb,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &harness{t: t, srv: srv, api: api, client: client}
}

func (h *harness) do(method, path string, body io.Reader, contentType, accept string) *http.Response {
	h.t.Helper()
	req, err := http.NewRequest(method, h.srv.URL+path, body)
	if err != nil {
		h.t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	resp, err := h.client.Do(req)
	if err != nil {
		h.t.Fatal(err)
	}
	h.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// json envoie payload en JSON (nil = pas de corps) et décode la réponse
func (h *harness) json(method, path string, payload any) (*http.Response, map[string]any) {
	h.t.Helper()
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	resp := h.do(method, path, body, contentType, "")
	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func (h *harness) login() {
	h.t.Helper()
	resp, body := h.json(http.MethodPost, "/admin/login", map[string]string{
		"email": mockapi.AdminEmail, "password": mockapi.AdminPassword,
	})
	if resp.StatusCode != http.StatusOK || body["authenticated"] != true {
		h.t.Fatalf("login: %d %v", resp.StatusCode, body)
	}
}

func (h *harness) upload(method, path string, names ...string) (*http.Response, map[string]any) {
	h.t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, name := range names {
		part, _ := w.CreateFormFile("file", name)
		_, _ = part.Write(pngBytes)
	}
	_ = w.Close()
	resp := h.do(method, path, buf, w.FormDataContentType(), "")
	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func TestAdminRoutesRequireSession(t *testing.T) {
	h := newHarness(t)

	resp, body := h.json(http.MethodGet, "/admin/products", nil)
	if resp.StatusCode != http.StatusUnauthorized || body["request_id"] == nil {
		t.Fatalf("json client: %d %v", resp.StatusCode, body)
	}

	resp = h.do(http.MethodGet, "/admin/orders", nil, "", "text/html")
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/admin/login" {
		t.Fatalf("html client: %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestLoginRejectsCustomerAndRateLimits(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.json(http.MethodPost, "/admin/login", map[string]string{
		"email": mockapi.CustomerEmail, "password": mockapi.CustomerPassword,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("customer login: %d", resp.StatusCode)
	}

	resp, body := h.json(http.MethodPost, "/admin/login", map[string]string{"email": "nope"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid form: %d %v", resp.StatusCode, body)
	}
	if fields, _ := body["fields"].(map[string]any); fields["email"] == nil || fields["password"] == nil {
		t.Fatalf("fields = %v", body["fields"])
	}

	bad := map[string]string{"email": mockapi.AdminEmail, "password": "wrong"}
	for i := 0; i < 5; i++ {
		if resp, _ := h.json(http.MethodPost, "/admin/login", bad); resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: %d", i+1, resp.StatusCode)
		}
	}
	resp, _ = h.json(http.MethodPost, "/admin/login", map[string]string{
		"email": mockapi.AdminEmail, "password": mockapi.AdminPassword,
	})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated failures, got %d", resp.StatusCode)
	}
}

func TestProductListFilters(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, body := h.json(http.MethodGet, "/admin/products", nil)
	if resp.StatusCode != http.StatusOK || body["total"] != float64(2) || body["remote"] != false {
		t.Fatalf("all products: %d %v", resp.StatusCode, body)
	}

	q := url.Values{"category": {"Collares y cadenas"}}
	_, body = h.json(http.MethodGet, "/admin/products?"+q.Encode(), nil)
	rows, _ := body["rows"].([]any)
	if len(rows) != 1 || rows[0].(map[string]any)["sku"] != "CO-010" {
		t.Fatalf("category filter: %v", body)
	}

	_, body = h.json(http.MethodGet, "/admin/products?search=an-0&price_min=1000", nil)
	if body["total"] != float64(1) {
		t.Fatalf("search + price: %v", body)
	}

	resp, _ = h.json(http.MethodGet, "/admin/products?status=archived", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad status: %d", resp.StatusCode)
	}
}

func TestDraftLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, body := h.json(http.MethodPost, "/admin/products/new", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("new draft: %d %v", resp.StatusCode, body)
	}
	draft := body["draft"].(string)
	base := "/admin/drafts/" + draft

	resp, body = h.json(http.MethodPatch, base, map[string]string{
		"name": "Aretes Sol", "sku": "AR-7", "description": "Oro rosa",
		"price": "abc", "stock": "2", "status": "featured",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad price should be rejected: %d", resp.StatusCode)
	}
	if fields, _ := body["fields"].(map[string]any); fields["price"] == nil {
		t.Fatalf("fields = %v", body)
	}
	resp, _ = h.json(http.MethodPatch, base, map[string]string{"price": "150.5"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch price: %d", resp.StatusCode)
	}

	resp, body = h.upload(http.MethodPost, base+"/images", "d1.png", "d2.png")
	if resp.StatusCode != http.StatusCreated || len(body["images"].([]any)) != 2 {
		t.Fatalf("add images: %d %v", resp.StatusCode, body)
	}

	// featured sans image principale : refusé sans appel à l'API
	resp, body = h.json(http.MethodPost, base+"/submit", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("submit without main image: %d %v", resp.StatusCode, body)
	}
	if n := h.api.Hits("POST /api/products"); n != 0 {
		t.Fatalf("remote create called %d times", n)
	}

	for _, slot := range []string{"main", "hover"} {
		resp, body = h.upload(http.MethodPut, base+"/images/"+slot, slot+".png")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("put %s: %d %v", slot, resp.StatusCode, body)
		}
	}
	main := body["mainImage"].(map[string]any)
	if !strings.HasPrefix(main["preview"].(string), "data:image/png;base64,") {
		t.Fatalf("main preview = %v", main)
	}

	// un DELETE rejoué ne doit pas retirer l'image suivante
	for i := 0; i < 2; i++ {
		resp, body = h.json(http.MethodDelete, base+"/images/detail-1", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("delete image: %d", resp.StatusCode)
		}
		imgs := body["images"].([]any)
		if len(imgs) != 1 || imgs[0].(map[string]any)["slot"] != "detail-0" {
			t.Fatalf("after delete #%d: %v", i+1, imgs)
		}
	}

	resp = h.do(http.MethodPost, base+"/submit", nil, "", "text/html")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/admin/products" {
		t.Fatalf("submit: %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
	if resp, _ := h.json(http.MethodGet, base, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("draft should be closed after submit: %d", resp.StatusCode)
	}

	_, body = h.json(http.MethodGet, "/admin/products?search=AR-7", nil)
	rows, _ := body["rows"].([]any)
	if len(rows) != 1 {
		t.Fatalf("new product not listed: %v", body)
	}
	created := rows[0].(map[string]any)
	if imgs, _ := created["images"].([]any); len(imgs) != 1 || created["price"] != 150.5 {
		t.Fatalf("created = %v", created)
	}
}

func TestEditAndDeleteProduct(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, body := h.json(http.MethodGet, "/admin/products?search=AN-001", nil)
	id := body["rows"].([]any)[0].(map[string]any)["id"].(string)

	resp, body := h.json(http.MethodPost, "/admin/products/edit/"+id, nil)
	if resp.StatusCode != http.StatusCreated || body["isNew"] != false {
		t.Fatalf("edit: %d %v", resp.StatusCode, body)
	}
	fields := body["fields"].(map[string]any)
	if fields["sku"] != "AN-001" {
		t.Fatalf("draft not seeded: %v", fields)
	}

	base := "/admin/drafts/" + body["draft"].(string)
	if resp, _ := h.json(http.MethodPatch, base, map[string]string{"stock": "9"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("patch stock: %d", resp.StatusCode)
	}
	resp, body = h.json(http.MethodPost, base+"/submit", nil)
	if resp.StatusCode != http.StatusOK || body["id"] != id || body["stock"] != float64(9) {
		t.Fatalf("json submit: %d %v", resp.StatusCode, body)
	}

	if resp, _ := h.json(http.MethodDelete, "/admin/products/"+id, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("delete without confirm: %d", resp.StatusCode)
	}
	resp, body = h.json(http.MethodDelete, "/admin/products/"+id+"?confirm=1", nil)
	if resp.StatusCode != http.StatusOK || body["total"] != float64(0) {
		t.Fatalf("delete: %d %v", resp.StatusCode, body)
	}
	if _, body = h.json(http.MethodGet, "/admin/products", nil); body["total"] != float64(1) {
		t.Fatalf("after delete: %v", body)
	}
}

func TestOrdersAndDashboard(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, body := h.json(http.MethodGet, "/admin/orders?status=pending", nil)
	if resp.StatusCode != http.StatusOK || body["total"] != float64(2) || body["remote"] != true {
		t.Fatalf("pending orders: %d %v", resp.StatusCode, body)
	}

	// recherche non prise en charge par l'API : signalée, pas reprise dans la vue
	resp, body = h.json(http.MethodGet, "/admin/orders?search=zzz", nil)
	if resp.StatusCode != http.StatusOK || body["search"] != nil || body["total"] != float64(5) {
		t.Fatalf("remote search: %d %v", resp.StatusCode, body)
	}
	if ignored, _ := body["ignored"].([]any); len(ignored) != 1 || ignored[0] != "search" {
		t.Fatalf("ignored = %v", body["ignored"])
	}

	resp, body = h.json(http.MethodPut, "/admin/orders/ord-1/status", map[string]string{"status": "shipped"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("change status: %d %v", resp.StatusCode, body)
	}
	resp, _ = h.json(http.MethodPut, "/admin/orders/ord-1/status", map[string]string{"status": "lost"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown status: %d", resp.StatusCode)
	}

	resp, body = h.json(http.MethodGet, "/admin/dashboard", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: %d", resp.StatusCode)
	}
	stats := body["stats"].(map[string]any)
	if stats["totalOrders"] != float64(5) || stats["pendingOrders"] != float64(1) {
		t.Fatalf("stats = %v", stats)
	}
	if recent := body["recentOrders"].([]any); len(recent) != 5 {
		t.Fatalf("recent = %d", len(recent))
	}
}

func TestLogoutEndsSession(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, _ := h.json(http.MethodPost, "/admin/logout", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: %d", resp.StatusCode)
	}
	if resp, _ := h.json(http.MethodGet, "/admin/dashboard", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("after logout: %d", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)
	if resp := h.do(http.MethodGet, "/healthz", nil, "", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: %d", resp.StatusCode)
	}
	resp := h.do(http.MethodGet, "/metrics", nil, "", "text/plain")
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(raw), "joyeria_admin_http_requests_total") {
		t.Fatalf("metrics: %d", resp.StatusCode)
	}
}
