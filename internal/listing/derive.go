package listing

// Query est l'état des prédicats et de la pagination envoyé aux sources
type Query struct {
	Search   string                `json:"search,omitempty"`
	Filters  map[string]Constraint `json:"filters,omitempty"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}

func (q Query) clone() Query {
	out := q
	out.Filters = make(map[string]Constraint, len(q.Filters))
	for k, v := range q.Filters {
		out.Filters[k] = v
	}
	return out
}

// Active retourne la contrainte non vide posée sur key
func (q Query) Active(key string) (Constraint, bool) {
	c, ok := q.Filters[key]
	if !ok || c.Empty() {
		return Constraint{}, false
	}
	return c, true
}

type Derived[T any] struct {
	Rows       []T
	Total      int
	TotalPages int
	Page       int
}

// Derive est pure : (collection, prédicats, page, taille) → tranche visible et compteurs.
// La page est ramenée dans [1, TotalPages] ; TotalPages vaut au moins 1.
func Derive[T any](schema Schema[T], items []T, q Query) Derived[T] {
	filtered := make([]T, 0, len(items))
	for _, row := range items {
		if schema.Match(row, q.Search, q.Filters) {
			filtered = append(filtered, row)
		}
	}

	pages := pageCount(len(filtered), q.PageSize)
	page := clampPage(q.Page, pages)

	rows := filtered
	if q.PageSize > 0 {
		start := (page - 1) * q.PageSize
		end := min(start+q.PageSize, len(filtered))
		rows = filtered[start:end]
	}
	return Derived[T]{Rows: rows, Total: len(filtered), TotalPages: pages, Page: page}
}

func pageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

func clampPage(page, pages int) int {
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}
