package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// Audit journalise une action d'administration (création, suppression, changement de statut)
// avec son auteur et son résultat
func Audit(l *slog.Logger, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		resourceID := c.Param("id")
		if resourceID == "" {
			resourceID = c.Param("draft")
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("request_id", GetRequestID(c)),
			slog.String("action", action),
			slog.String("resource", resource),
			slog.String("resource_id", resourceID),
			slog.String("admin", c.GetString("admin_email")),
			slog.Int("status", status),
		}
		if status >= 200 && status < 400 && len(c.Errors) == 0 {
			l.LogAttrs(c.Request.Context(), slog.LevelInfo, "audit", attrs...)
			return
		}
		l.LogAttrs(c.Request.Context(), slog.LevelWarn, "audit_failed", attrs...)
	}
}
