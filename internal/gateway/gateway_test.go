package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"joyeria_admin/internal/apperr"
	"joyeria_admin/internal/mockapi"
	"joyeria_admin/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

// pngBytes est un en-tête PNG minimal, suffisant pour la détection MIME
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newTestClient(t *testing.T, opts ...mockapi.Option) (*Client, *mockapi.Server) {
	t.Helper()
	api := mockapi.New(opts...)
	if err := api.Seed(); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	c := New(srv.URL, 5*time.Second)
	resp, err := c.Login(context.Background(), mockapi.AdminEmail, mockapi.AdminPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return c.WithTokens(staticToken(resp.Token)), api
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.Login(context.Background(), mockapi.AdminEmail, "nope")
	if !apperr.Is(err, apperr.Unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	var gwErr *Error
	if !errors.As(err, &gwErr) || gwErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected *gateway.Error with 401, got %#v", err)
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateProduct(ctx, ProductPayload{
		Product: models.Product{
			Name: "Anillo A", SKU: "A-1", Description: "Oro",
			Price: decimal.RequireFromString("100.00"), Stock: 5,
			Category: models.CategoryEngagementRings, Status: models.ProductActive,
		},
		Images: []File{{Name: "a.png", Data: pngBytes}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("server should assign an id")
	}

	got, err := c.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Anillo A" || got.SKU != "A-1" || got.Stock != 5 ||
		!got.Price.Equal(decimal.NewFromInt(100)) ||
		got.Category != models.CategoryEngagementRings || got.Status != models.ProductActive {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.MainImage != "" || got.HoverImage != "" {
		t.Fatalf("active product must have no main/hover image: %+v", got)
	}
	if len(got.Images) != 1 {
		t.Fatalf("expected one detail image, got %v", got.Images)
	}
}

func TestUpdateKeepsExistingImagesAndUploadsFiles(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	seeded := api.AddProduct(models.Product{
		Name: "Pulsera", SKU: "PU-1", Description: "Plata", Price: decimal.NewFromInt(50), Stock: 2,
		Category: models.CategoryBracelets, Status: models.ProductFeatured,
		MainImage: "/uploads/old-main.png", HoverImage: "/uploads/old-hover.png",
		Images: []string{"/uploads/d1.png"},
	})

	p := seeded
	p.Stock = 9
	updated, err := c.UpdateProduct(ctx, seeded.ID, ProductPayload{
		Product:    p,
		HoverImage: &File{Name: "new-hover.png", Data: pngBytes},
		Images:     []File{{Name: "d2.png", Data: pngBytes}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Stock != 9 || updated.MainImage != "/uploads/old-main.png" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if updated.HoverImage == "/uploads/old-hover.png" || updated.HoverImage == "" {
		t.Fatalf("hover image should be replaced, got %q", updated.HoverImage)
	}
	if len(updated.Images) != 2 || updated.Images[0] != "/uploads/d1.png" {
		t.Fatalf("images = %v", updated.Images)
	}
	if data, ok := api.Upload(updated.Images[1]); !ok || len(data) != len(pngBytes) {
		t.Fatal("uploaded detail image not stored byte for byte")
	}
}

func TestDeleteProductNotFound(t *testing.T) {
	c, _ := newTestClient(t)
	err := c.DeleteProduct(context.Background(), "missing")
	if !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListOrdersServerSideFilter(t *testing.T) {
	c, _ := newTestClient(t)
	page, err := c.ListOrders(context.Background(), OrderQuery{Page: 1, Limit: 10, Status: models.OrderPending})
	if err != nil {
		t.Fatal(err)
	}
	if page.Complete {
		t.Fatal("paged response must not be flagged complete")
	}
	if len(page.Orders) != 2 {
		t.Fatalf("expected 2 pending orders, got %d", len(page.Orders))
	}
}

func TestListOrdersNormalizesBareArray(t *testing.T) {
	c, _ := newTestClient(t, mockapi.WithLegacyOrders())
	page, err := c.ListOrders(context.Background(), OrderQuery{Status: models.OrderPending})
	if err != nil {
		t.Fatal(err)
	}
	if !page.Complete || page.TotalPages != 1 || len(page.Orders) != 5 {
		t.Fatalf("bare array not normalized: complete=%v pages=%d n=%d", page.Complete, page.TotalPages, len(page.Orders))
	}
}

func TestOrderStatsAndStatusUpdate(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	stats, err := c.GetOrderStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalOrders != 5 || stats.PendingOrders != 2 || !stats.TotalRevenue.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("stats = %+v", stats)
	}

	o, err := c.UpdateOrderStatus(ctx, "ord-1", models.OrderShipped)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != models.OrderShipped {
		t.Fatalf("status = %s", o.Status)
	}
}

func TestTransportErrorIsInternal(t *testing.T) {
	c := New("http://127.0.0.1:1", time.Second)
	_, err := c.ListProducts(context.Background())
	if !apperr.Is(err, apperr.Internal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestLongErrorBodyIsCutOnRuneBoundary(t *testing.T) {
	body := []byte(strings.Repeat("a", maxMessageLen-1) + "éxito fallido")
	msg := extractMessage(body)
	if !utf8.ValidString(msg) {
		t.Fatalf("invalid UTF-8: %q", msg)
	}
	if msg != strings.Repeat("a", maxMessageLen-1) {
		t.Fatalf("msg = %q", msg)
	}

	short := "Conflicto: el código ya existe"
	if got := extractMessage([]byte(short)); got != short {
		t.Fatalf("short body changed: %q", got)
	}
	if got := extractMessage([]byte(`{"error":"Producto no encontrado"}`)); got != "Producto no encontrado" {
		t.Fatalf("json body: %q", got)
	}
}
