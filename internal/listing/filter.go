package listing

import (
	"strings"
)

// Constraint est la contrainte posée sur un champ : égalité exacte ou intervalle numérique inclusif.
// Une contrainte vide n'impose rien.
type Constraint struct {
	Exact string   `json:"exact,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

func Exact(v string) Constraint {
	return Constraint{Exact: strings.TrimSpace(v)}
}

// Range construit un intervalle ; nil = borne ouverte
func Range(min, max *float64) Constraint {
	return Constraint{Min: min, Max: max}
}

func (c Constraint) Empty() bool {
	return c.Exact == "" && c.Min == nil && c.Max == nil
}

// Schema décrit comment lire les champs filtrables d'une ligne
type Schema[T any] struct {
	// ID identifie une ligne pour les mises à jour optimistes et les suppressions
	ID func(T) string
	// Search : champs texte parcourus par le terme de recherche (OU entre les champs)
	Search []func(T) string
	// Text : clés filtrées par égalité exacte, insensible à la casse
	Text map[string]func(T) string
	// Number : clés filtrées par intervalle inclusif
	Number map[string]func(T) float64
}

// Knows indique si key est une clé de filtre déclarée
func (s Schema[T]) Knows(key string) bool {
	if _, ok := s.Text[key]; ok {
		return true
	}
	_, ok := s.Number[key]
	return ok
}

// Match : tous les prédicats actifs doivent être vrais (ET logique)
func (s Schema[T]) Match(row T, search string, filters map[string]Constraint) bool {
	if term := strings.ToLower(strings.TrimSpace(search)); term != "" && len(s.Search) > 0 {
		found := false
		for _, field := range s.Search {
			if strings.Contains(strings.ToLower(field(row)), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for key, c := range filters {
		if c.Empty() {
			continue
		}
		if get, ok := s.Text[key]; ok && c.Exact != "" {
			if !strings.EqualFold(get(row), c.Exact) {
				return false
			}
		}
		if get, ok := s.Number[key]; ok {
			v := get(row)
			if c.Min != nil && v < *c.Min {
				return false
			}
			if c.Max != nil && v > *c.Max {
				return false
			}
		}
	}
	return true
}
