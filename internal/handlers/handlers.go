// Package handlers regroupe les aides communes aux handlers de la console d'administration.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"joyeria_admin/internal/apperr"
	"joyeria_admin/internal/listing"
	"joyeria_admin/internal/middleware"
)

// BindError convertit une erreur de binding gin en erreur de validation par champ
func BindError(err error) error {
	fields := map[string]string{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[lowerFirst(fe.Field())] = messageForTag(fe.Tag(), fe.Param())
		}
	} else {
		fields["_"] = "Données du formulaire invalides."
	}
	return &apperr.AppError{Kind: apperr.Invalid, PublicMsg: "Le formulaire contient des erreurs", Fields: fields, Err: err}
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "Ce champ est obligatoire."
	case "email":
		return "Adresse e-mail invalide."
	case "min":
		return "Doit être au moins " + param + "."
	case "oneof":
		return "Valeur non autorisée."
	default:
		return "Valeur invalide."
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// Done termine une action : corps JSON pour un client API, redirection 303 pour un formulaire HTML
func Done(c *gin.Context, status int, body any, location string) {
	if middleware.WantsJSON(c) {
		if body == nil {
			c.Status(status)
			return
		}
		c.JSON(status, body)
		return
	}
	c.Redirect(http.StatusSeeOther, location)
}

// ListView est la forme JSON d'une liste filtrée et paginée
type ListView[T any] struct {
	State      listing.State                 `json:"state"`
	Error      string                        `json:"error,omitempty"`
	Rows       []T                           `json:"rows"`
	Total      int                           `json:"total"`
	Page       int                           `json:"page"`
	TotalPages int                           `json:"totalPages"`
	PageSize   int                           `json:"pageSize"`
	Search     string                        `json:"search,omitempty"`
	Filters    map[string]listing.Constraint `json:"filters,omitempty"`
	Remote     bool                          `json:"remote"`
	// Ignored liste les paramètres reçus que la source ne sait pas appliquer
	Ignored []string `json:"ignored,omitempty"`
}

func NewListView[T any](v listing.View[T]) ListView[T] {
	out := ListView[T]{
		State:      v.State,
		Rows:       v.Rows,
		Total:      v.Total,
		Page:       v.Page,
		TotalPages: v.TotalPages,
		PageSize:   v.PageSize,
		Search:     v.Search,
		Filters:    v.Filters,
		Remote:     v.Remote,
	}
	if out.Rows == nil {
		out.Rows = []T{}
	}
	if v.Err != nil {
		out.Error = apperr.PublicMessage(v.Err)
	}
	return out
}

// RenderList répond avec la vue de la liste ; une liste en erreur garde sa vue, avec le statut de l'erreur
func RenderList[T any](c *gin.Context, v listing.View[T]) {
	c.JSON(ListStatus(v), NewListView(v))
}

func ListStatus[T any](v listing.View[T]) int {
	if v.State == listing.StateError && v.Err != nil {
		return apperr.HTTPStatus(v.Err)
	}
	return http.StatusOK
}

// Queryable est la partie d'un contrôleur de liste pilotée par les paramètres d'URL
type Queryable interface {
	Load(ctx context.Context) error
	Query() listing.Query
	SetSearchTerm(ctx context.Context, term string) error
	SetFilter(ctx context.Context, key string, c listing.Constraint) error
	SetPage(ctx context.Context, page int) error
}

// ApplyQuery aligne la liste sur l'URL ; seuls les prédicats qui changent sont appliqués.
// Une erreur de chargement est laissée dans l'état de la liste, seules les erreurs de requête remontent.
func ApplyQuery(ctx context.Context, l Queryable, search string, filters map[string]listing.Constraint, page int) error {
	if err := l.Load(ctx); err != nil {
		return nil
	}
	cur := l.Query()
	if search != cur.Search {
		if err := l.SetSearchTerm(ctx, search); err != nil {
			return loadErr(err)
		}
	}
	for key, c := range filters {
		if sameConstraint(cur.Filters[key], c) {
			continue
		}
		if err := l.SetFilter(ctx, key, c); err != nil {
			return loadErr(err)
		}
	}
	if page < 1 {
		page = 1
	}
	if page != l.Query().Page {
		return loadErr(l.SetPage(ctx, page))
	}
	return nil
}

// loadErr : les échecs côté API sont déjà visibles dans l'état de la liste
func loadErr(err error) error {
	if errors.Is(err, listing.ErrUnknownFilter) {
		return apperr.InvalidErr("Filtre inconnu", nil)
	}
	return nil
}

func sameConstraint(a, b listing.Constraint) bool {
	return strings.EqualFold(a.Exact, b.Exact) && sameBound(a.Min, b.Min) && sameBound(a.Max, b.Max)
}

func sameBound(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ErrorText est le message public d'une erreur, vide si err est nil
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	return apperr.PublicMessage(err)
}
