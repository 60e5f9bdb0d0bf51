package product

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"joyeria_admin/internal/apperr"
	"joyeria_admin/internal/editor"
	"joyeria_admin/internal/handlers"
	"joyeria_admin/internal/middleware"
	"joyeria_admin/internal/models"
)

type draftView struct {
	Draft       string             `json:"draft"`
	State       editor.State       `json:"state"`
	ProductID   string             `json:"productId,omitempty"`
	IsNew       bool               `json:"isNew"`
	Fields      editor.Draft       `json:"fields"`
	MainImage   editor.ImageView   `json:"mainImage"`
	HoverImage  editor.ImageView   `json:"hoverImage"`
	Images      []editor.ImageView `json:"images"`
	Error       string             `json:"error,omitempty"`
	ErrorFields map[string]string  `json:"errorFields,omitempty"`
	Categories  []models.Category  `json:"categories"`
}

func newDraftView(id string, s editor.Snapshot) draftView {
	v := draftView{
		Draft:      id,
		State:      s.State,
		ProductID:  s.ID,
		IsNew:      s.IsNew,
		Fields:     s.Draft,
		MainImage:  s.Main,
		HoverImage: s.Hover,
		Images:     s.Details,
		Error:      handlers.ErrorText(s.Err),
		Categories: models.Categories,
	}
	if v.Images == nil {
		v.Images = []editor.ImageView{}
	}
	if ae, ok := apperr.As(s.Err); ok {
		v.ErrorFields = ae.Fields
	}
	return v
}

func draftLocation(id string) string {
	return "/admin/drafts/" + id
}

// currentEditor retourne le brouillon :draft du navigateur, ou pousse une 404
func currentEditor(c *gin.Context) (string, *editor.Editor, bool) {
	id := c.Param("draft")
	ed, ok := middleware.CurrentWorkspace(c).Editor(id)
	if !ok {
		middleware.Fail(c, apperr.NotFoundErr("Brouillon introuvable ou expiré"))
		return "", nil, false
	}
	return id, ed, true
}

func renderDraft(c *gin.Context, status int, id string, ed *editor.Editor) {
	c.JSON(status, newDraftView(id, ed.Snapshot()))
}

// NewDraft ouvre un formulaire de création
func NewDraft(c *gin.Context) {
	openDraft(c, "")
}

// EditDraft ouvre le formulaire pré-rempli avec le produit :id
func EditDraft(c *gin.Context) {
	openDraft(c, c.Param("id"))
}

func openDraft(c *gin.Context, productID string) {
	w := middleware.CurrentWorkspace(c)
	id, ed, err := w.OpenEditor(c.Request.Context(), productID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.Header("Location", draftLocation(id))
	handlers.Done(c, http.StatusCreated, newDraftView(id, ed.Snapshot()), draftLocation(id))
}

func GetDraft(c *gin.Context) {
	id, ed, ok := currentEditor(c)
	if !ok {
		return
	}
	renderDraft(c, http.StatusOK, id, ed)
}

// PatchDraft applique les champs reçus (JSON objet ou formulaire) ;
// les champs valides sont appliqués même si d'autres sont rejetés
func PatchDraft(c *gin.Context) {
	id, ed, ok := currentEditor(c)
	if !ok {
		return
	}

	values, err := patchValues(c)
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	fields := map[string]string{}
	for _, f := range orderedFields(values) {
		if err := ed.SetField(f, values[string(f)]); err != nil {
			ae, ok := apperr.As(err)
			if !ok || ae.Kind != apperr.Invalid {
				middleware.Fail(c, err)
				return
			}
			fields[string(f)] = ae.PublicMsg
		}
	}
	for key := range values {
		if !knownField(key) {
			fields[key] = "Champ inconnu"
		}
	}
	if len(fields) > 0 {
		middleware.Fail(c, apperr.InvalidErr("Certains champs ont été refusés", fields))
		return
	}
	renderDraft(c, http.StatusOK, id, ed)
}

func patchValues(c *gin.Context) (map[string]string, error) {
	values := map[string]string{}
	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&values); err != nil {
			return nil, handlers.BindError(err)
		}
		return values, nil
	}
	if err := c.Request.ParseForm(); err != nil {
		return nil, handlers.BindError(err)
	}
	for key, vs := range c.Request.PostForm {
		if len(vs) > 0 {
			values[key] = vs[len(vs)-1]
		}
	}
	return values, nil
}

// orderedFields suit l'ordre du formulaire
func orderedFields(values map[string]string) []editor.Field {
	var out []editor.Field
	for _, f := range editor.Fields {
		if _, ok := values[string(f)]; ok {
			out = append(out, f)
		}
	}
	return out
}

func knownField(key string) bool {
	for _, f := range editor.Fields {
		if string(f) == key {
			return true
		}
	}
	return false
}

// SubmitDraft : succès = produit enregistré (JSON) ou 303 vers la liste produits ; échec = le brouillon reste ouvert
func SubmitDraft(c *gin.Context) {
	id, ed, ok := currentEditor(c)
	if !ok {
		return
	}
	saved, err := ed.Submit(c.Request.Context())
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	middleware.CurrentWorkspace(c).CloseEditor(id)
	handlers.Done(c, http.StatusOK, saved, "/admin/products")
}

// DiscardDraft abandonne le brouillon ; idempotent
func DiscardDraft(c *gin.Context) {
	middleware.CurrentWorkspace(c).CloseEditor(c.Param("draft"))
	handlers.Done(c, http.StatusNoContent, nil, "/admin/products")
}
