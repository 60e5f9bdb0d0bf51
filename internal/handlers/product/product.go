package product

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"joyeria_admin/internal/catalog"
	"joyeria_admin/internal/handlers"
	"joyeria_admin/internal/listing"
	"joyeria_admin/internal/middleware"
)

type listQuery struct {
	Search   string   `form:"search"`
	Category string   `form:"category"`
	Status   string   `form:"status" binding:"omitempty,oneof=active featured"`
	PriceMin *float64 `form:"price_min" binding:"omitempty,min=0"`
	PriceMax *float64 `form:"price_max" binding:"omitempty,min=0"`
	StockMin *float64 `form:"stock_min" binding:"omitempty,min=0"`
	StockMax *float64 `form:"stock_max" binding:"omitempty,min=0"`
	Page     int      `form:"page" binding:"omitempty,min=1"`
}

func (q listQuery) filters() map[string]listing.Constraint {
	return map[string]listing.Constraint{
		catalog.FilterCategory: listing.Exact(q.Category),
		catalog.FilterStatus:   listing.Exact(q.Status),
		catalog.FilterPrice:    listing.Range(q.PriceMin, q.PriceMax),
		catalog.FilterStock:    listing.Range(q.StockMin, q.StockMax),
	}
}

// GetProducts : la liste entière est chargée une fois puis filtrée et paginée en mémoire
func GetProducts(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.Fail(c, handlers.BindError(err))
		return
	}

	list := middleware.CurrentWorkspace(c).Products
	if err := handlers.ApplyQuery(c.Request.Context(), list, q.Search, q.filters(), q.Page); err != nil {
		middleware.Fail(c, err)
		return
	}
	handlers.RenderList(c, list.View())
}

// DeleteProduct exige ?confirm=1 ; la liste est rechargée depuis l'API après suppression
func DeleteProduct(c *gin.Context) {
	list := middleware.CurrentWorkspace(c).Products
	confirmed := c.Query("confirm") == "1" || c.Query("confirm") == "true"

	if err := list.Delete(c.Request.Context(), c.Param("id"), confirmed); err != nil {
		middleware.Fail(c, err)
		return
	}
	handlers.Done(c, http.StatusOK, handlers.NewListView(list.View()), "/admin/products")
}
