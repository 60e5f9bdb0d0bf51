package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const LoginPath = "/admin/login"

// RequireAdmin bloque tout accès sans session admin :
// navigation HTML redirigée vers la connexion, client JSON en 401
func RequireAdmin(c *gin.Context) {
	w := CurrentWorkspace(c)
	if user, ok := w.Session.User(); ok && user.IsAdmin() {
		c.Set("admin_email", user.Email)
		c.Next()
		return
	}

	if WantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":      "Connexion requise",
			"request_id": GetRequestID(c),
		})
		return
	}
	c.Redirect(http.StatusFound, LoginPath)
	c.Abort()
}
