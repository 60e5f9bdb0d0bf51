package editor

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"joyeria_admin/internal/apperr"
	"joyeria_admin/internal/models"
)

// Field énumère les champs scalaires modifiables du formulaire
type Field string

const (
	FieldName        Field = "name"
	FieldSKU         Field = "sku"
	FieldDescription Field = "description"
	FieldPrice       Field = "price"
	FieldStock       Field = "stock"
	FieldCategory    Field = "category"
	FieldStatus      Field = "status"
	FieldMaterial    Field = "material"
	FieldColor       Field = "color"
	FieldGender      Field = "gender"
)

var Fields = []Field{
	FieldName, FieldSKU, FieldDescription, FieldPrice, FieldStock,
	FieldCategory, FieldStatus, FieldMaterial, FieldColor, FieldGender,
}

// Draft contient les valeurs scalaires en cours d'édition.
// Price et Stock restent nil tant que l'utilisateur ne les a pas saisis.
type Draft struct {
	Name        string               `json:"name" validate:"required"`
	SKU         string               `json:"sku" validate:"required"`
	Description string               `json:"description" validate:"required"`
	Price       *decimal.Decimal     `json:"price" validate:"required"`
	Stock       *int                 `json:"stock" validate:"required"`
	Category    models.Category      `json:"category" validate:"required"`
	Status      models.ProductStatus `json:"status" validate:"required,oneof=active featured"`
	Material    string               `json:"material"`
	Color       string               `json:"color"`
	Gender      models.Gender        `json:"gender"`
}

func defaultDraft() Draft {
	return Draft{
		Category: models.Categories[0],
		Status:   models.ProductActive,
	}
}

func draftFrom(p models.Product) Draft {
	price := p.Price
	stock := p.Stock
	return Draft{
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		Price:       &price,
		Stock:       &stock,
		Category:    p.Category,
		Status:      p.Status,
		Material:    p.Material,
		Color:       p.Color,
		Gender:      p.Gender,
	}
}

// set applique une saisie ; en cas d'erreur le brouillon n'est pas modifié
func (d *Draft) set(field Field, raw string) error {
	value := strings.TrimSpace(raw)
	switch field {
	case FieldName:
		d.Name = value
	case FieldSKU:
		d.SKU = value
	case FieldDescription:
		d.Description = raw
	case FieldMaterial:
		d.Material = value
	case FieldColor:
		d.Color = value
	case FieldPrice:
		if value == "" {
			d.Price = nil
			return nil
		}
		price, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
		if err != nil || price.IsNegative() {
			return fieldErr(field, "Prix invalide")
		}
		d.Price = &price
	case FieldStock:
		if value == "" {
			d.Stock = nil
			return nil
		}
		stock, err := strconv.Atoi(value)
		if err != nil || stock < 0 {
			return fieldErr(field, "Stock invalide")
		}
		d.Stock = &stock
	case FieldCategory:
		c := models.Category(value)
		if !c.Valid() {
			return fieldErr(field, "Catégorie inconnue")
		}
		d.Category = c
	case FieldStatus:
		s := models.ProductStatus(value)
		if !s.Valid() {
			return fieldErr(field, "Statut inconnu")
		}
		d.Status = s
	case FieldGender:
		g := models.Gender(value)
		if !g.Valid() {
			return fieldErr(field, "Genre inconnu")
		}
		d.Gender = g
	default:
		return fieldErr(field, "Champ inconnu")
	}
	return nil
}

func fieldErr(field Field, msg string) error {
	return apperr.InvalidErr(msg, map[string]string{string(field): msg})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkRequired remplit fields avec les erreurs des balises validate
func (d Draft) checkRequired(fields map[string]string) error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	for _, fe := range ve {
		fields[fe.Field()] = messageForTag(fe.Tag())
	}
	return nil
}

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "Ce champ est obligatoire."
	case "oneof":
		return "Valeur non autorisée."
	default:
		return "Valeur invalide."
	}
}
