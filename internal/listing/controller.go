// Package listing implémente le cycle filtrer / paginer / muter des listes d'administration.
package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"joyeria_admin/internal/apperr"
	"joyeria_admin/internal/metrics"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Result est la réponse d'une source.
// Complete = Items est la collection entière non filtrée : le contrôleur filtre et pagine en mémoire.
// Sinon la source a déjà appliqué la requête : Items est la page visible.
type Result[T any] struct {
	Items      []T
	Total      int // nombre filtré côté serveur, -1 si inconnu
	TotalPages int
	Complete   bool
}

type Source[T any] interface {
	Fetch(ctx context.Context, q Query) (Result[T], error)
}

// SourceFunc adapte une fonction en Source
type SourceFunc[T any] func(ctx context.Context, q Query) (Result[T], error)

func (f SourceFunc[T]) Fetch(ctx context.Context, q Query) (Result[T], error) {
	return f(ctx, q)
}

var ErrUnknownFilter = errors.New("listing: unknown filter key")

// Controller garde la collection chargée, les prédicats et le curseur de page.
// Il fonctionne de la même façon que le filtrage soit fait par le serveur ou en mémoire.
type Controller[T any] struct {
	name   string
	schema Schema[T]
	source Source[T]

	mu         sync.Mutex
	state      State
	err        error
	query      Query
	items      []T
	loaded     bool
	remote     bool
	total      int
	totalPages int
	// gen numérote les chargements : seul le plus récent est appliqué
	gen uint64
	// applied compte les résultats appliqués, pour ne pas annuler une donnée serveur plus récente
	applied uint64
}

func NewController[T any](name string, schema Schema[T], source Source[T], pageSize int) *Controller[T] {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Controller[T]{
		name:   name,
		schema: schema,
		source: source,
		state:  StateIdle,
		query:  Query{Page: 1, PageSize: pageSize, Filters: map[string]Constraint{}},
	}
}

// Load charge la collection au premier affichage ; sans effet si déjà chargée
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()
	if loaded {
		return nil
	}
	return c.fetch(ctx)
}

// Invalidate recharge depuis la source quel que soit le mode
func (c *Controller[T]) Invalidate(ctx context.Context) error {
	return c.fetch(ctx)
}

func (c *Controller[T]) SetSearchTerm(ctx context.Context, term string) error {
	c.mu.Lock()
	c.query.Search = term
	c.query.Page = 1
	c.mu.Unlock()
	return c.afterQueryChange(ctx)
}

func (c *Controller[T]) SetFilter(ctx context.Context, key string, constraint Constraint) error {
	if !c.schema.Knows(key) {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, key)
	}
	c.mu.Lock()
	if constraint.Empty() {
		delete(c.query.Filters, key)
	} else {
		c.query.Filters[key] = constraint
	}
	c.query.Page = 1
	c.mu.Unlock()
	return c.afterQueryChange(ctx)
}

func (c *Controller[T]) ClearFilter(ctx context.Context, key string) error {
	return c.SetFilter(ctx, key, Constraint{})
}

// SetPage déplace le curseur, borné à [1, nombre de pages connu]
func (c *Controller[T]) SetPage(ctx context.Context, page int) error {
	c.mu.Lock()
	pages := c.pagesLocked()
	c.query.Page = clampPage(page, pages)
	c.mu.Unlock()
	return c.afterQueryChange(ctx)
}

// afterQueryChange : en mode serveur (ou avant tout chargement) on recharge,
// en mode local la vue est recalculée à la lecture.
func (c *Controller[T]) afterQueryChange(ctx context.Context) error {
	c.mu.Lock()
	needFetch := !c.loaded || c.remote
	c.mu.Unlock()
	if needFetch {
		return c.fetch(ctx)
	}
	return nil
}

func (c *Controller[T]) fetch(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	q := c.query.clone()
	c.state = StateLoading
	c.mu.Unlock()

	res, err := c.source.Fetch(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// un chargement plus récent a été lancé entre-temps
		metrics.RecordStaleFetch(c.name)
		return nil
	}
	if err != nil {
		c.state = StateError
		c.err = err
		return err
	}

	c.items = res.Items
	c.loaded = true
	c.remote = !res.Complete
	c.total = res.Total
	c.totalPages = max(res.TotalPages, 1)
	c.state = StateReady
	c.err = nil
	c.applied++
	if c.remote {
		c.query.Page = clampPage(c.query.Page, c.totalPages)
	}
	return nil
}

// pagesLocked : nombre de pages pour l'état courant, appelé sous c.mu
func (c *Controller[T]) pagesLocked() int {
	if c.remote {
		return max(c.totalPages, 1)
	}
	return Derive(c.schema, c.items, c.query).TotalPages
}

// Update applique mutate à la ligne id immédiatement, puis appelle remote.
// Si remote échoue, la ligne est restaurée, sauf si un rechargement l'a remplacée entre-temps.
func (c *Controller[T]) Update(ctx context.Context, id string, mutate func(*T), remote func(context.Context) error) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return apperr.NotFoundErr("Élément introuvable dans la liste")
	}
	previous := c.items[idx]
	next := previous
	mutate(&next)
	c.items[idx] = next
	applied := c.applied
	c.mu.Unlock()

	if err := remote(ctx); err != nil {
		c.mu.Lock()
		if c.applied == applied {
			if i := c.indexLocked(id); i >= 0 {
				c.items[i] = previous
			}
		}
		c.mu.Unlock()
		return err
	}
	return nil
}

// Remove supprime après confirmation explicite puis recharge la collection depuis le serveur
func (c *Controller[T]) Remove(ctx context.Context, id string, confirmed bool, remote func(context.Context) error) error {
	if !confirmed {
		return apperr.InvalidErr("La suppression doit être confirmée", nil)
	}
	if err := remote(ctx); err != nil {
		return err
	}
	return c.Invalidate(ctx)
}

// Contains indique si la ligne id fait partie des données chargées
func (c *Controller[T]) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexLocked(id) >= 0
}

func (c *Controller[T]) indexLocked(id string) int {
	for i, row := range c.items {
		if c.schema.ID(row) == id {
			return i
		}
	}
	return -1
}

// View est l'instantané rendu par les handlers
type View[T any] struct {
	State      State
	Err        error
	Rows       []T
	Total      int
	Page       int
	TotalPages int
	PageSize   int
	Search     string
	Filters    map[string]Constraint
	Remote     bool
}

func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := c.query.clone()
	v := View[T]{
		State:    c.state,
		Err:      c.err,
		PageSize: q.PageSize,
		Search:   q.Search,
		Filters:  q.Filters,
		Remote:   c.remote,
	}
	if c.remote {
		v.Rows = append([]T(nil), c.items...)
		v.Total = c.total
		v.Page = q.Page
		v.TotalPages = max(c.totalPages, 1)
		return v
	}

	d := Derive(c.schema, c.items, q)
	v.Rows = append([]T(nil), d.Rows...)
	v.Total = d.Total
	v.Page = d.Page
	v.TotalPages = d.TotalPages
	return v
}

// Query retourne une copie des prédicats et de la page courants
func (c *Controller[T]) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.clone()
}
