package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"joyeria_admin/internal/apperr"
	"joyeria_admin/internal/workspace"
)

const (
	CookieName        = "joyeria_admin"
	cookieWorkspaceID = "workspace_id"
	ctxKeyWorkspace   = "workspace"
)

// Workspace lit l'identifiant du cookie (ou en crée un) et attache le Workspace à la requête
func Workspace(reg *workspace.Registry, store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		// un cookie illisible (secret changé) donne une session neuve
		cookie, _ := store.Get(c.Request, CookieName)
		id, _ := cookie.Values[cookieWorkspaceID].(string)
		if id == "" {
			id = workspace.NewID()
			cookie.Values[cookieWorkspaceID] = id
			if err := cookie.Save(c.Request, c.Writer); err != nil {
				Fail(c, apperr.Wrap(err))
				return
			}
		}

		w, err := reg.Get(c.Request.Context(), id)
		if err != nil {
			Fail(c, apperr.Wrap(err))
			return
		}
		c.Set(ctxKeyWorkspace, w)
		c.Next()
	}
}

// CurrentWorkspace est toujours présent derrière le middleware Workspace
func CurrentWorkspace(c *gin.Context) *workspace.Workspace {
	w, _ := c.MustGet(ctxKeyWorkspace).(*workspace.Workspace)
	return w
}
