package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"joyeria_admin/internal/gateway"
	"joyeria_admin/internal/handlers"
	"joyeria_admin/internal/middleware"
	"joyeria_admin/internal/models"
	"joyeria_admin/internal/orders"
)

const recentOrdersLimit = 5

type dashboardView struct {
	User         models.User        `json:"user"`
	Stats        *models.OrderStats `json:"stats,omitempty"`
	StatsError   string             `json:"statsError,omitempty"`
	RecentOrders []models.Order     `json:"recentOrders"`
	RecentError  string             `json:"recentError,omitempty"`
}

// Index redirige vers le tableau de bord
func Index(c *gin.Context) {
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

// GetDashboard : compteurs de commandes et dernières commandes.
// Un bloc en échec est signalé dans la vue sans empêcher l'affichage de l'autre.
func GetDashboard(c *gin.Context) {
	w := middleware.CurrentWorkspace(c)
	ctx := c.Request.Context()
	user, _ := w.Session.User()

	view := dashboardView{User: user, RecentOrders: []models.Order{}}

	stats, err := orders.Stats(ctx, w.API)
	if err != nil {
		_ = c.Error(err)
		view.StatsError = handlers.ErrorText(err)
	} else {
		view.Stats = stats
	}

	page, err := w.API.ListOrders(ctx, gateway.OrderQuery{Page: 1, Limit: recentOrdersLimit})
	if err != nil {
		_ = c.Error(err)
		view.RecentError = handlers.ErrorText(err)
	} else {
		recent := page.Orders
		if len(recent) > recentOrdersLimit {
			recent = recent[:recentOrdersLimit]
		}
		view.RecentOrders = recent
	}

	c.JSON(http.StatusOK, view)
}
