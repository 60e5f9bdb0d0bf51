// Package editor gère le formulaire de création / modification d'un produit,
// fichiers d'images en attente compris, jusqu'à sa soumission à l'API.
package editor

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"joyeria_admin/internal/apperr"
	"joyeria_admin/internal/gateway"
	"joyeria_admin/internal/models"
)

type State string

const (
	StateLoading    State = "loading"
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateDone       State = "done"
)

// MaxImageSize borne la taille d'un fichier image accepté
const MaxImageSize = 10 << 20

type Gateway interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p gateway.ProductPayload) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, p gateway.ProductPayload) (*models.Product, error)
}

type Option func(*Editor)

// WithOnSaved est appelé après chaque enregistrement réussi
func WithOnSaved(fn func(ctx context.Context, p *models.Product)) Option {
	return func(e *Editor) { e.onSaved = fn }
}

type Editor struct {
	gw      Gateway
	onSaved func(ctx context.Context, p *models.Product)

	mu    sync.Mutex
	state State
	err   error
	// id vide = création
	id       string
	original *models.Product
	draft    Draft
	main     image
	hover    image
	details  []image

	seq     uint64
	pending map[uint64]struct{}
	// settled est fermé puis remplacé à chaque aperçu décodé
	settled chan struct{}
}

// New crée un éditeur vide, prêt pour une création
func New(gw Gateway, opts ...Option) *Editor {
	e := &Editor{
		gw:      gw,
		state:   StateEditing,
		draft:   defaultDraft(),
		pending: map[uint64]struct{}{},
		settled: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load récupère le produit id puis initialise le formulaire avec.
// Si la lecture échoue, l'éditeur reste en chargement avec l'erreur dans Snapshot().Err
// et refuse toute saisie : il faut l'abandonner, ou rappeler Load.
func (e *Editor) Load(ctx context.Context, id string) error {
	e.BeginLoad(id)
	p, err := e.gw.GetProduct(ctx, id)
	if err != nil {
		e.mu.Lock()
		e.err = err
		e.mu.Unlock()
		return err
	}
	e.Initialize(*p)
	return nil
}

func (e *Editor) BeginLoad(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateLoading
	e.id = id
	e.err = nil
}

// Initialize remplace le brouillon par l'enregistrement p
func (e *Editor) Initialize(p models.Product) {
	e.mu.Lock()
	defer e.mu.Unlock()

	original := p
	original.Images = append([]string(nil), p.Images...)
	e.original = &original
	if p.ID != "" {
		e.id = p.ID
	}
	e.draft = draftFrom(p)
	e.main = image{url: p.MainImage}
	e.hover = image{url: p.HoverImage}
	e.details = make([]image, 0, len(p.Images))
	for _, url := range p.Images {
		e.details = append(e.details, image{url: url})
	}
	e.state = StateEditing
	e.err = nil
}

func (e *Editor) editableLocked() error {
	if e.state != StateEditing {
		return apperr.ConflictErr("Le formulaire n'est pas modifiable pour le moment")
	}
	return nil
}

// SetField applique une saisie. Passer le statut à "active" retire les images principale et de survol.
func (e *Editor) SetField(field Field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editableLocked(); err != nil {
		return err
	}
	if err := e.draft.set(field, value); err != nil {
		return err
	}
	if field == FieldStatus && e.draft.Status == models.ProductActive {
		e.main.clear()
		e.hover.clear()
	}
	return nil
}

// SetImage place un fichier dans slot ; l'aperçu est décodé en arrière-plan
func (e *Editor) SetImage(slot Slot, filename string, data []byte) error {
	if err := checkImage(data); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editableLocked(); err != nil {
		return err
	}
	im := e.slotLocked(slot)
	if im == nil {
		return apperr.InvalidErr("Emplacement d'image inexistant", map[string]string{"slot": slot.String()})
	}
	e.stageLocked(im, filename, data)
	return nil
}

// AddDetailImage ajoute une image de détail en fin de liste
func (e *Editor) AddDetailImage(filename string, data []byte) (Slot, error) {
	if err := checkImage(data); err != nil {
		return Slot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editableLocked(); err != nil {
		return Slot{}, err
	}
	e.details = append(e.details, image{})
	e.stageLocked(&e.details[len(e.details)-1], filename, data)
	return DetailSlot(len(e.details) - 1), nil
}

// RemoveImage vide slot ; sans effet si l'emplacement est déjà vide ou inexistant.
// Un emplacement de détail vidé garde son numéro : les suivants ne se décalent pas.
func (e *Editor) RemoveImage(slot Slot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editableLocked(); err != nil {
		return err
	}
	if im := e.slotLocked(slot); im != nil {
		im.clear()
	}
	return nil
}

func checkImage(data []byte) error {
	if len(data) == 0 {
		return apperr.InvalidErr("Fichier vide", map[string]string{"file": "Fichier vide"})
	}
	if len(data) > MaxImageSize {
		return apperr.InvalidErr("Fichier trop volumineux", map[string]string{"file": "10 Mo maximum"})
	}
	if !strings.HasPrefix(mimetype.Detect(data).String(), "image/") {
		return apperr.InvalidErr("Le fichier n'est pas une image", map[string]string{"file": "Format non reconnu"})
	}
	return nil
}

func (e *Editor) slotLocked(s Slot) *image {
	switch s.kind {
	case slotMain:
		return &e.main
	case slotHover:
		return &e.hover
	}
	if s.index < 0 || s.index >= len(e.details) {
		return nil
	}
	return &e.details[s.index]
}

func (e *Editor) stageLocked(im *image, filename string, data []byte) {
	e.seq++
	token := e.seq
	*im = image{file: &gateway.File{Name: filename, Data: data}, token: token}
	e.pending[token] = struct{}{}
	go e.decodePreview(token, data)
}

func (e *Editor) decodePreview(token uint64, data []byte) {
	uri := dataURI(data)

	e.mu.Lock()
	defer e.mu.Unlock()
	// le fichier a pu être remplacé ou retiré pendant le décodage
	if im := e.byTokenLocked(token); im != nil {
		im.preview = uri
	}
	delete(e.pending, token)
	close(e.settled)
	e.settled = make(chan struct{})
}

func (e *Editor) byTokenLocked(token uint64) *image {
	if e.main.token == token {
		return &e.main
	}
	if e.hover.token == token {
		return &e.hover
	}
	for i := range e.details {
		if e.details[i].token == token {
			return &e.details[i]
		}
	}
	return nil
}

// WaitPreviews attend la fin des décodages en cours
func (e *Editor) WaitPreviews(ctx context.Context) error {
	for {
		e.mu.Lock()
		if len(e.pending) == 0 {
			e.mu.Unlock()
			return nil
		}
		ch := e.settled
		e.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Submit valide le brouillon puis crée ou met à jour le produit.
// En cas d'échec le formulaire reste modifiable avec les saisies intactes.
func (e *Editor) Submit(ctx context.Context) (*models.Product, error) {
	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if err := e.validateLocked(); err != nil {
		e.err = err
		e.mu.Unlock()
		return nil, err
	}
	payload := e.payloadLocked()
	id := e.id
	e.state = StateSubmitting
	e.err = nil
	e.mu.Unlock()

	var saved *models.Product
	var err error
	if id == "" {
		saved, err = e.gw.CreateProduct(ctx, payload)
	} else {
		saved, err = e.gw.UpdateProduct(ctx, id, payload)
	}

	e.mu.Lock()
	if err != nil {
		e.state = StateEditing
		e.err = err
		e.mu.Unlock()
		slog.Warn("échec d'enregistrement du produit", "id", id, "sku", payload.Product.SKU, "error", err)
		return nil, err
	}
	e.state = StateDone
	e.mu.Unlock()

	slog.Info("produit enregistré", "id", saved.ID, "sku", saved.SKU, "created", id == "")
	if e.onSaved != nil {
		e.onSaved(ctx, saved)
	}
	return saved, nil
}

func (e *Editor) validateLocked() error {
	fields := map[string]string{}
	if err := e.draft.checkRequired(fields); err != nil {
		return err
	}

	if e.draft.Status == models.ProductFeatured {
		if !e.main.present() {
			fields["mainImage"] = "Image principale obligatoire pour un produit mis en avant."
		}
		if !e.hover.present() && !e.hoverWaivedLocked() {
			fields["hoverImage"] = "Image de survol obligatoire pour un produit mis en avant."
		}
	}
	if e.id == "" && e.detailCountLocked() == 0 {
		fields["images"] = "Ajoutez au moins une image."
	}

	if len(fields) > 0 {
		return apperr.InvalidErr("Le formulaire contient des erreurs", fields)
	}
	return nil
}

func (e *Editor) detailCountLocked() int {
	n := 0
	for i := range e.details {
		if e.details[i].present() {
			n++
		}
	}
	return n
}

// hoverWaivedLocked : un produit déjà mis en avant garde son image de survol telle quelle
func (e *Editor) hoverWaivedLocked() bool {
	return e.original != nil &&
		e.original.Status == models.ProductFeatured &&
		e.hover.file == nil &&
		e.hover.url == e.original.HoverImage
}

// payloadLocked n'envoie que les fichiers et les URLs conservées, jamais les aperçus
func (e *Editor) payloadLocked() gateway.ProductPayload {
	d := e.draft
	p := models.Product{
		ID:          e.id,
		Name:        d.Name,
		SKU:         d.SKU,
		Description: d.Description,
		Price:       *d.Price,
		Stock:       *d.Stock,
		Category:    d.Category,
		Status:      d.Status,
		Material:    d.Material,
		Color:       d.Color,
		Gender:      d.Gender,
	}
	payload := gateway.ProductPayload{}

	if d.Status == models.ProductFeatured {
		p.MainImage, payload.MainImage = e.main.url, e.main.file
		p.HoverImage, payload.HoverImage = e.hover.url, e.hover.file
		if payload.MainImage != nil {
			p.MainImage = ""
		}
		if payload.HoverImage != nil {
			p.HoverImage = ""
		}
	}
	for _, im := range e.details {
		if im.file != nil {
			payload.Images = append(payload.Images, *im.file)
		} else if im.url != "" {
			p.Images = append(p.Images, im.url)
		}
	}
	payload.Product = p
	return payload
}

// Snapshot est une copie en lecture seule de l'éditeur pour le rendu
type Snapshot struct {
	State   State
	Err     error
	ID      string
	IsNew   bool
	Draft   Draft
	Main    ImageView
	Hover   ImageView
	Details []ImageView
}

func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		State: e.state,
		Err:   e.err,
		ID:    e.id,
		IsNew: e.id == "",
		Draft: e.draft,
		Main:  e.main.view(MainSlot),
		Hover: e.hover.view(HoverSlot),
	}
	for i := range e.details {
		if e.details[i].present() {
			s.Details = append(s.Details, e.details[i].view(DetailSlot(i)))
		}
	}
	return s
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
