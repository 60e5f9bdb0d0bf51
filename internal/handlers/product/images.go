package product

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"joyeria_admin/internal/apperr"
	"joyeria_admin/internal/editor"
	"joyeria_admin/internal/middleware"
)

const (
	filePart = "file"
	// previewWait borne l'attente du décodage des aperçus avant de répondre
	previewWait = 2 * time.Second
)

// PutImage remplace l'image de l'emplacement :slot (main, hover, detail-N)
func PutImage(c *gin.Context) {
	id, ed, ok := currentEditor(c)
	if !ok {
		return
	}
	slot, err := editor.ParseSlot(c.Param("slot"))
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("Emplacement d'image inconnu", map[string]string{"slot": c.Param("slot")}))
		return
	}
	fh, err := c.FormFile(filePart)
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("Fichier manquant", map[string]string{filePart: "Ce champ est obligatoire."}))
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if err := ed.SetImage(slot, fh.Filename, data); err != nil {
		middleware.Fail(c, err)
		return
	}
	waitPreviews(c, ed)
	renderDraft(c, http.StatusOK, id, ed)
}

// AddImages ajoute une ou plusieurs images de détail (parties "file" répétées)
func AddImages(c *gin.Context) {
	id, ed, ok := currentEditor(c)
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil || len(form.File[filePart]) == 0 {
		middleware.Fail(c, apperr.InvalidErr("Fichier manquant", map[string]string{filePart: "Ce champ est obligatoire."}))
		return
	}
	for _, fh := range form.File[filePart] {
		data, err := readUpload(fh)
		if err != nil {
			middleware.Fail(c, err)
			return
		}
		if _, err := ed.AddDetailImage(fh.Filename, data); err != nil {
			middleware.Fail(c, err)
			return
		}
	}
	waitPreviews(c, ed)
	renderDraft(c, http.StatusCreated, id, ed)
}

// DeleteImage vide l'emplacement ; idempotent
func DeleteImage(c *gin.Context) {
	id, ed, ok := currentEditor(c)
	if !ok {
		return
	}
	slot, err := editor.ParseSlot(c.Param("slot"))
	if err != nil {
		middleware.Fail(c, apperr.InvalidErr("Emplacement d'image inconnu", map[string]string{"slot": c.Param("slot")}))
		return
	}
	if err := ed.RemoveImage(slot); err != nil {
		middleware.Fail(c, err)
		return
	}
	renderDraft(c, http.StatusOK, id, ed)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > editor.MaxImageSize {
		return nil, apperr.InvalidErr("Fichier trop volumineux", map[string]string{filePart: "10 Mo maximum"})
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, editor.MaxImageSize+1))
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return data, nil
}

// waitPreviews : un aperçu encore en cours apparaît comme "pending" dans la vue
func waitPreviews(c *gin.Context, ed *editor.Editor) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), previewWait)
	defer cancel()
	_ = ed.WaitPreviews(ctx)
}
