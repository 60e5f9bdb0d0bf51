package gateway

import (
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/shopspring/decimal"

	"joyeria_admin/internal/models"
)

func TestEncodeProductPayload(t *testing.T) {
	payload := ProductPayload{
		Product: models.Product{
			Name: "Collar", SKU: "C-1", Description: "d", Price: decimal.RequireFromString("12.50"), Stock: 1,
			Category: models.CategoryNecklaces, Status: models.ProductFeatured,
			MainImage: "/uploads/kept.png", Images: []string{"/uploads/old.png"},
		},
		HoverImage: &File{Name: "hover.png", Data: pngBytes},
		Images:     []File{{Name: "a.png", Data: pngBytes}, {Name: "b.png", Data: pngBytes}},
	}

	body, contentType, err := payload.Encode()
	if err != nil {
		t.Fatal(err)
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatal(err)
	}

	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	if got := form.Value["price"]; len(got) != 1 || got[0] != "12.5" {
		t.Errorf("price = %v", got)
	}
	if got := form.Value[PartMainImage]; len(got) != 1 || got[0] != "/uploads/kept.png" {
		t.Errorf("kept main image = %v", got)
	}
	if got := form.Value[PartExistingImages]; len(got) != 1 {
		t.Errorf("existing images = %v", got)
	}
	if got := form.File[PartImages]; len(got) != 2 {
		t.Fatalf("expected 2 %s parts, got %d", PartImages, len(got))
	}
	hover := form.File[PartHoverImage]
	if len(hover) != 1 || hover[0].Header.Get("Content-Type") != "image/png" {
		t.Fatalf("hover part = %+v", hover)
	}
	f, _ := hover[0].Open()
	data, _ := io.ReadAll(f)
	if string(data) != string(pngBytes) {
		t.Error("file bytes altered")
	}
}
