package order

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"joyeria_admin/internal/handlers"
	"joyeria_admin/internal/listing"
	"joyeria_admin/internal/middleware"
	"joyeria_admin/internal/models"
	"joyeria_admin/internal/orders"
)

type listQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending paid shipped completed cancelled"`
	// Search n'est appliqué que si l'API a renvoyé la collection complète
	Search string `form:"search"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
}

// GetOrders : filtre de statut et pagination délégués à l'API
func GetOrders(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.Fail(c, handlers.BindError(err))
		return
	}

	list := middleware.CurrentWorkspace(c).Orders
	filters := map[string]listing.Constraint{orders.FilterStatus: listing.Exact(q.Status)}
	if err := handlers.ApplyQuery(c.Request.Context(), list, q.Search, filters, q.Page); err != nil {
		middleware.Fail(c, err)
		return
	}
	v := list.View()
	out := handlers.NewListView(v)
	// l'API ne filtre pas par texte : la recherche ne vaut qu'en mode dégradé
	if v.Remote && v.Search != "" {
		out.Search = ""
		out.Ignored = []string{"search"}
	}
	c.JSON(handlers.ListStatus(v), out)
}

type statusInput struct {
	Status models.OrderStatus `json:"status" form:"status" binding:"required"`
}

// UpdateOrderStatus : la ligne change immédiatement et revient à l'ancien statut si l'API refuse
func UpdateOrderStatus(c *gin.Context) {
	var input statusInput
	if err := c.ShouldBind(&input); err != nil {
		middleware.Fail(c, handlers.BindError(err))
		return
	}

	list := middleware.CurrentWorkspace(c).Orders
	ctx := c.Request.Context()
	if err := list.Load(ctx); err != nil {
		middleware.Fail(c, err)
		return
	}
	if err := list.ChangeStatus(ctx, c.Param("id"), input.Status); err != nil {
		middleware.Fail(c, err)
		return
	}
	handlers.Done(c, http.StatusOK, handlers.NewListView(list.View()), "/admin/orders")
}
