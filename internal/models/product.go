package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// L'API distante envoie les prix en nombres JSON, pas en chaînes
	decimal.MarshalJSONWithoutQuotes = true
}

// Category est l'une des catégories fixes du catalogue bijouterie
type Category string

const (
	CategoryEngagementRings Category = "Anillos compromiso"
	CategoryWeddingRings    Category = "Anillos matrimonio"
	CategoryNecklaces       Category = "Collares y cadenas"
	CategoryBracelets       Category = "Pulseras y brazaletes"
	CategoryEarrings        Category = "Aretes y pendientes"
	CategoryCharms          Category = "Dijes y charms"
	CategoryBrooches        Category = "Broches y alfileres"
)

// Categories respecte l'ordre d'affichage du formulaire ; la première sert de valeur par défaut
var Categories = []Category{
	CategoryEngagementRings,
	CategoryWeddingRings,
	CategoryNecklaces,
	CategoryBracelets,
	CategoryEarrings,
	CategoryCharms,
	CategoryBrooches,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductFeatured ProductStatus = "featured"
)

func (s ProductStatus) Valid() bool {
	return s == ProductActive || s == ProductFeatured
}

type Gender string

const (
	GenderNone   Gender = ""
	GenderMale   Gender = "hombre"
	GenderFemale Gender = "mujer"
	GenderUnisex Gender = "unisex"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderNone, GenderMale, GenderFemale, GenderUnisex:
		return true
	}
	return false
}

// Product est la fiche produit telle que renvoyée par l'API.
// Les images sont des URLs ; MainImage et HoverImage ne sont renseignées que pour un produit "featured".
type Product struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    Category        `json:"category"`
	Status      ProductStatus   `json:"status"`
	Material    string          `json:"material,omitempty"`
	Color       string          `json:"color,omitempty"`
	Gender      Gender          `json:"gender,omitempty"`
	MainImage   string          `json:"mainImage,omitempty"`
	HoverImage  string          `json:"hoverImage,omitempty"`
	Images      []string        `json:"images,omitempty"`
}
