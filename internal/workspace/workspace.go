// Package workspace regroupe, pour chaque navigateur, la session et les écrans ouverts.
package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"joyeria_admin/internal/catalog"
	"joyeria_admin/internal/editor"
	"joyeria_admin/internal/gateway"
	"joyeria_admin/internal/models"
	"joyeria_admin/internal/orders"
	"joyeria_admin/internal/session"
)

// Workspace est l'état serveur d'un navigateur : session, listes et brouillons d'édition
type Workspace struct {
	ID       string
	Session  *session.Session
	API      *gateway.Client
	Products *catalog.List
	Orders   *orders.List

	mu       sync.Mutex
	editors  map[string]*editor.Editor
	lastSeen time.Time
}

// OpenEditor crée un brouillon ; id vide = nouveau produit, sinon le produit est chargé
func (w *Workspace) OpenEditor(ctx context.Context, productID string) (string, *editor.Editor, error) {
	ed := editor.New(w.API, editor.WithOnSaved(w.productSaved))
	if productID != "" {
		if err := ed.Load(ctx, productID); err != nil {
			return "", nil, err
		}
	}

	draftID := uuid.NewString()
	w.mu.Lock()
	w.editors[draftID] = ed
	w.mu.Unlock()
	return draftID, ed, nil
}

func (w *Workspace) Editor(draftID string) (*editor.Editor, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ed, ok := w.editors[draftID]
	return ed, ok
}

// CloseEditor abandonne le brouillon ; sans effet s'il n'existe pas
func (w *Workspace) CloseEditor(draftID string) {
	w.mu.Lock()
	delete(w.editors, draftID)
	w.mu.Unlock()
}

// productSaved : la liste produits est rechargée à la prochaine consultation
func (w *Workspace) productSaved(ctx context.Context, p *models.Product) {
	if err := w.Products.Refresh(ctx); err != nil {
		slog.Warn("rechargement de la liste produits", "product_id", p.ID, "error", err)
	}
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return now.Sub(w.lastSeen)
}

// Registry associe les identifiants de cookie à leur Workspace
type Registry struct {
	api      *gateway.Client
	store    session.Store
	cache    *catalog.ListCache
	pageSize int
	now      func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewRegistry(api *gateway.Client, store session.Store, cache *catalog.ListCache, pageSize int) *Registry {
	return &Registry{
		api:      api,
		store:    store,
		cache:    cache,
		pageSize: pageSize,
		now:      time.Now,
		items:    map[string]*Workspace{},
	}
}

// NewID génère un identifiant de workspace à placer dans le cookie
func NewID() string {
	return uuid.NewString()
}

// Get retourne le workspace id, en le créant au besoin ; la session persistée est relue à la création
func (r *Registry) Get(ctx context.Context, id string) (*Workspace, error) {
	r.mu.Lock()
	w, ok := r.items[id]
	r.mu.Unlock()
	if ok {
		w.touch(r.now())
		return w, nil
	}

	sess := session.New(id, r.store, r.api)
	if err := sess.Init(ctx); err != nil {
		return nil, err
	}
	api := r.api.WithTokens(sess)
	w = &Workspace{
		ID:       id,
		Session:  sess,
		API:      api,
		Products: catalog.NewList(api, r.cache, r.pageSize),
		Orders:   orders.NewList(api, r.pageSize),
		editors:  map[string]*editor.Editor{},
		lastSeen: r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// une autre requête du même navigateur a pu le créer entre-temps
	if existing, ok := r.items[id]; ok {
		return existing, nil
	}
	r.items[id] = w
	return w, nil
}

// Drop oublie le workspace (déconnexion) ; la session persistée n'est pas touchée
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	delete(r.items, id)
	r.mu.Unlock()
}

// Sweep libère les workspaces inactifs depuis plus de maxIdle et retourne leur nombre
func (r *Registry) Sweep(maxIdle time.Duration) int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, w := range r.items {
		if w.idleSince(now) > maxIdle {
			delete(r.items, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
