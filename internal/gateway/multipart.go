package gateway

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"joyeria_admin/internal/models"
)

// Noms des parties du formulaire multipart
const (
	PartMainImage      = "mainImage"
	PartHoverImage     = "hoverImage"
	PartImages         = "images[]"
	PartExistingImages = "existingImages[]"
)

// File est un fichier choisi localement, pas encore envoyé
type File struct {
	Name string
	Data []byte
}

// ContentType détecte le type MIME à partir des octets
func (f File) ContentType() string {
	return mimetype.Detect(f.Data).String()
}

// ProductPayload est la soumission complète d'une fiche produit : le serveur remplace l'enregistrement entier.
// Product porte les champs scalaires et les URLs d'images conservées ; les fichiers remplacent ces URLs.
type ProductPayload struct {
	Product    models.Product
	MainImage  *File
	HoverImage *File
	Images     []File
}

// Encode produit le corps multipart et son Content-Type
func (p ProductPayload) Encode() (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	pr := p.Product
	fields := []struct{ name, value string }{
		{"name", pr.Name},
		{"sku", pr.SKU},
		{"description", pr.Description},
		{"price", pr.Price.String()},
		{"stock", strconv.Itoa(pr.Stock)},
		{"category", string(pr.Category)},
		{"status", string(pr.Status)},
		{"material", pr.Material},
		{"color", pr.Color},
		{"gender", string(pr.Gender)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	if p.MainImage != nil {
		if err := writeFile(w, PartMainImage, *p.MainImage); err != nil {
			return nil, "", err
		}
	} else if pr.MainImage != "" {
		if err := w.WriteField(PartMainImage, pr.MainImage); err != nil {
			return nil, "", err
		}
	}

	if p.HoverImage != nil {
		if err := writeFile(w, PartHoverImage, *p.HoverImage); err != nil {
			return nil, "", err
		}
	} else if pr.HoverImage != "" {
		if err := w.WriteField(PartHoverImage, pr.HoverImage); err != nil {
			return nil, "", err
		}
	}

	for _, url := range pr.Images {
		if err := w.WriteField(PartExistingImages, url); err != nil {
			return nil, "", err
		}
	}
	for _, f := range p.Images {
		if err := writeFile(w, PartImages, f); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field string, f File) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(field), escapeQuotes(f.Name)))
	h.Set("Content-Type", f.ContentType())
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(f.Data)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
