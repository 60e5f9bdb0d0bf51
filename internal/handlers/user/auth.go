package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"joyeria_admin/internal/handlers"
	"joyeria_admin/internal/middleware"
	"joyeria_admin/internal/models"
	"joyeria_admin/internal/workspace"
)

type loginInput struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type sessionView struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
}

func currentSession(c *gin.Context) sessionView {
	w := middleware.CurrentWorkspace(c)
	if u, ok := w.Session.User(); ok {
		return sessionView{Authenticated: true, User: &u}
	}
	return sessionView{}
}

// LoginPage indique si le navigateur a déjà une session admin
func LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c))
}

// Login : seul un compte admin ouvre une session ; l'échec est compté par LoginRateLimit
func Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBind(&input); err != nil {
		middleware.Fail(c, handlers.BindError(err))
		return
	}

	w := middleware.CurrentWorkspace(c)
	if _, err := w.Session.Login(c.Request.Context(), input.Email, input.Password); err != nil {
		middleware.Fail(c, err)
		return
	}
	handlers.Done(c, http.StatusOK, currentSession(c), "/admin/dashboard")
}

// Logout efface la session persistée et oublie les listes et brouillons du navigateur
func Logout(reg *workspace.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		w := middleware.CurrentWorkspace(c)
		if err := w.Session.Logout(c.Request.Context()); err != nil {
			middleware.Fail(c, err)
			return
		}
		reg.Drop(w.ID)
		handlers.Done(c, http.StatusNoContent, nil, middleware.LoginPath)
	}
}
