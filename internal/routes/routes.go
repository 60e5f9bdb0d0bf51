package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"joyeria_admin/internal/handlers/admin"
	"joyeria_admin/internal/handlers/order"
	"joyeria_admin/internal/handlers/product"
	"joyeria_admin/internal/handlers/user"
	"joyeria_admin/internal/metrics"
	"joyeria_admin/internal/middleware"
	"joyeria_admin/internal/workspace"
)

// Deps rassemble ce dont les routes ont besoin ; Redis peut être nil (pas de limite de connexion)
type Deps struct {
	Registry    *workspace.Registry
	Cookies     sessions.Store
	Redis       *redis.Client
	Logger      *slog.Logger
	CORSOrigins []string
}

// NewRouter construit le moteur gin avec la chaîne de middlewares commune
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	r := gin.New()
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID, "Location"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(
		middleware.RequestID(),
		middleware.Logger(d.Logger),
		metrics.Middleware(),
		middleware.ErrorHandler(d.Logger),
		middleware.Recovery(d.Logger),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	public := r.Group("/admin", middleware.Workspace(d.Registry, d.Cookies))
	public.GET("/login", user.LoginPage)
	public.POST("/login", middleware.LoginRateLimit(d.Redis), user.Login)
	public.POST("/logout", user.Logout(d.Registry))

	authed := public.Group("", middleware.RequireAdmin)
	authed.GET("", admin.Index)
	authed.GET("/dashboard", admin.GetDashboard)

	// Produits
	authed.GET("/products", product.GetProducts)
	authed.DELETE("/products/:id", middleware.Audit(d.Logger, "product_delete", "product"), product.DeleteProduct)
	authed.POST("/products/new", product.NewDraft)
	authed.POST("/products/edit/:id", product.EditDraft)

	// Brouillons d'édition
	drafts := authed.Group("/drafts/:draft")
	drafts.GET("", product.GetDraft)
	drafts.PATCH("", product.PatchDraft)
	drafts.DELETE("", product.DiscardDraft)
	drafts.PUT("/images/:slot", product.PutImage)
	drafts.POST("/images", product.AddImages)
	drafts.DELETE("/images/:slot", product.DeleteImage)
	drafts.POST("/submit", middleware.Audit(d.Logger, "product_save", "product"), product.SubmitDraft)

	// Commandes
	authed.GET("/orders", order.GetOrders)
	authed.PUT("/orders/:id/status", middleware.Audit(d.Logger, "order_status_change", "order"), order.UpdateOrderStatus)
}
